package notify

// Notifier pushes state updates to connected clients. Fire-and-forget,
// at-most-once, best effort: simulation correctness never depends on a
// message arriving.
type Notifier interface {
	NotifyPlayer(sessionID, playerID, name string, msg any)
	NotifySession(sessionID, name string, msg any)
}

// Nop drops every notification. Useful in tests and tools.
type Nop struct{}

func (Nop) NotifyPlayer(sessionID, playerID, name string, msg any) {}
func (Nop) NotifySession(sessionID, name string, msg any)          {}
