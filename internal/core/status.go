package core

// Status is the lifecycle state of a Core, exposed to the host UI.
type Status uint8

const (
	Uninitialized Status = iota
	Ready
	Rendering
	ContextLost
	Disposed
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Rendering:
		return "rendering"
	case ContextLost:
		return "context lost"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}
