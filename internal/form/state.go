package form

// State is a step of the add-patient submit lifecycle.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// acceptsInput reports whether field changes and a new submit are allowed.
func (s State) acceptsInput() bool {
	return s != StateSubmitting && s != StateValidating
}
