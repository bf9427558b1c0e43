package domain

// ServiceState is the lifecycle of a running entry point.
type ServiceState int32

const (
	// ServiceStarting covers artifact checks and binding.
	ServiceStarting ServiceState = iota
	// ServiceServing means the listener is bound and requests are accepted.
	ServiceServing
	// ServiceStopped is terminal.
	ServiceStopped
)

// String returns the lowercase state name.
func (s ServiceState) String() string {
	switch s {
	case ServiceStarting:
		return "starting"
	case ServiceServing:
		return "serving"
	case ServiceStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CanTransition reports whether moving from s to next is allowed.
// starting may go to serving or stopped, serving only to stopped.
func (s ServiceState) CanTransition(next ServiceState) bool {
	switch s {
	case ServiceStarting:
		return next == ServiceServing || next == ServiceStopped
	case ServiceServing:
		return next == ServiceStopped
	default:
		return false
	}
}
