package feed

// Trigger identifies what started a refresh cycle.
type Trigger int

const (
	// TriggerTimer is the recurring refresh schedule.
	TriggerTimer Trigger = iota
	// TriggerFocus fires when the display becomes visible again.
	TriggerFocus
	// TriggerManual is an explicit user request.
	TriggerManual
	// TriggerStream is an early refresh after a whale-sized execution on the market channel.
	TriggerStream
)

// String returns the trigger name used in logs and metric labels.
func (t Trigger) String() string {
	switch t {
	case TriggerTimer:
		return "timer"
	case TriggerFocus:
		return "focus"
	case TriggerManual:
		return "manual"
	case TriggerStream:
		return "stream"
	default:
		return "unknown"
	}
}

// UserInitiated reports whether the trigger came from an explicit user action.
// Automatic triggers stay silent when a cycle finds nothing new.
func (t Trigger) UserInitiated() bool {
	return t == TriggerManual
}
