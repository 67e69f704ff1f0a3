package controller

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/notify"
)

var ErrUnexpectedRuntime = errors.New("unexpected runtime error")

// ErrorObserver turns errors nobody else handled, panics included, into
// destructive notices while it is started.
type ErrorObserver struct {
	notifier notify.Notifier
	log      *zap.Logger

	mu     sync.Mutex
	active bool
}

func NewErrorObserver(notifier notify.Notifier, log *zap.Logger) *ErrorObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ErrorObserver{notifier: notifier, log: log.Named("observer")}
}

// Start begins forwarding reports to the notifier
func (o *ErrorObserver) Start() {
	o.mu.Lock()
	o.active = true
	o.mu.Unlock()
}

// Stop ends forwarding. Later reports are only logged.
func (o *ErrorObserver) Stop() {
	o.mu.Lock()
	o.active = false
	o.mu.Unlock()
}

// Report surfaces err as one destructive notice
func (o *ErrorObserver) Report(err error) {
	if err == nil {
		return
	}
	o.log.Error("unexpected error", zap.Error(err))

	o.mu.Lock()
	active := o.active
	o.mu.Unlock()

	if active {
		o.notifier.Notify("Unexpected Error", err.Error(), notify.SeverityDestructive)
	}
}

// Guard runs fn and converts a panic into ErrUnexpectedRuntime
func (o *ErrorObserver) Guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrUnexpectedRuntime, name, r)
			o.Report(err)
		}
	}()
	return fn()
}
