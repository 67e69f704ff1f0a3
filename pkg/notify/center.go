// Package notify holds the short-lived notices shown in the notification tray.
package notify

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a notice stays visible
	DefaultTTL = 3 * time.Second

	// DefaultLimit bounds the tray; older notices are superseded
	DefaultLimit = 5
)

// Severity of a notice
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityDestructive
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityDestructive:
		return "destructive"
	default:
		return "unknown"
	}
}

// Notifier accepts user-facing notices
type Notifier interface {
	Notify(title, description string, severity Severity) string
}

// Notification is one user-visible notice
type Notification struct {
	ID          string
	Title       string
	Description string
	Severity    Severity
	CreatedAt   time.Time
}

// Option configures a Center
type Option func(*Center)

// WithTTL overrides the display window
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLimit overrides how many notices the tray keeps
func WithLimit(limit int) Option {
	return func(c *Center) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithClock swaps the clock driving expiry timers
func WithClock(clk clock.Clock) Option {
	return func(c *Center) {
		c.clock = clk
	}
}

// WithLogger attaches a logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Center) {
		c.log = log
	}
}

// Center keeps the ordered list of pending notices. Each notice owns its own
// timer and is removed by id, so overlapping notices never evict each other.
type Center struct {
	mu        sync.Mutex
	clock     clock.Clock
	log       *zap.Logger
	ttl       time.Duration
	limit     int
	items     []Notification
	timers    map[string]*clock.Timer
	listeners map[int]func([]Notification)
	nextID    int
	closed    bool
}

// NewCenter creates an empty notification center
func NewCenter(opts ...Option) *Center {
	c := &Center{
		clock:     clock.New(),
		log:       zap.NewNop(),
		ttl:       DefaultTTL,
		limit:     DefaultLimit,
		timers:    make(map[string]*clock.Timer),
		listeners: make(map[int]func([]Notification)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify appends a notice and schedules its removal. It returns the notice id.
func (c *Center) Notify(title, description string, severity Severity) string {
	n := Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Severity:    severity,
		CreatedAt:   c.clock.Now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("notice dropped after close", zap.String("title", title))
		return n.ID
	}

	c.items = append(c.items, n)
	id := n.ID
	c.timers[id] = c.clock.AfterFunc(c.ttl, func() {
		c.remove(id)
	})

	// Supersede the oldest notices once the tray is full
	for len(c.items) > c.limit {
		oldest := c.items[0]
		c.items = c.items[1:]
		if t, ok := c.timers[oldest.ID]; ok {
			t.Stop()
			delete(c.timers, oldest.ID)
		}
	}
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debug("notice added",
		zap.String("id", n.ID),
		zap.String("title", title),
		zap.Stringer("severity", severity),
	)
	publish(listeners, snapshot)
	return n.ID
}

// Info adds an informational notice
func (c *Center) Info(title, description string) string {
	return c.Notify(title, description, SeverityInfo)
}

// Destructive adds an error notice
func (c *Center) Destructive(title, description string) string {
	return c.Notify(title, description, SeverityDestructive)
}

// List returns the pending notices, oldest first
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Dismiss removes a notice before its timer fires
func (c *Center) Dismiss(id string) bool {
	return c.remove(id)
}

// Subscribe registers fn to receive the list after every change.
// The returned function cancels the subscription.
func (c *Center) Subscribe(fn func([]Notification)) func() {
	c.mu.Lock()
	key := c.nextID
	c.nextID++
	c.listeners[key] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, key)
		c.mu.Unlock()
	}
}

// Close stops every pending timer. Notices added afterwards are dropped.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.listeners = make(map[int]func([]Notification))
}

func (c *Center) remove(id string) bool {
	c.mu.Lock()
	idx := -1
	for i, n := range c.items {
		if n.ID == id {
			idx = i
			break
		}
	}
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	publish(listeners, snapshot)
	return true
}

func (c *Center) snapshotLocked() ([]Notification, []func([]Notification)) {
	snapshot := make([]Notification, len(c.items))
	copy(snapshot, c.items)

	listeners := make([]func([]Notification), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	return snapshot, listeners
}

func publish(listeners []func([]Notification), snapshot []Notification) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
