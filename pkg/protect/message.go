package protect

// Phase of the protected message
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseProtecting
	PhaseProtected
	PhaseUnprotecting
	PhaseRevealed
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseProtecting:
		return "protecting"
	case PhaseProtected:
		return "protected"
	case PhaseUnprotecting:
		return "unprotecting"
	case PhaseRevealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// Message is the client-side view of one protected message.
// An empty Handle means nothing has been protected yet.
type Message struct {
	Plaintext string
	Handle    string
	Revealed  string
	Phase     Phase
}

// HasHandle reports whether a protected artifact exists
func (m Message) HasHandle() bool {
	return m.Handle != ""
}
