package errx

// System-class error codes shared across the service. Business codes
// (INSUFFICIENT_RESOURCES, SESSION_FULL, ...) live in their own domains;
// the kit only normalizes technical failures.

const (
	// CodeInternal is the catch-all for unexpected internal failures.
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable marks an unreachable dependency (DB, broker, downstream).
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout marks a dependency call that ran out of time.
	CodeTimeout Code = "TIMEOUT"
)

// Shared system sentinels. Derive with WithData/WithCause, never mutate.
var (
	ErrInternal    = NewSys(CodeInternal, "internal server error")
	ErrUnavailable = NewSys(CodeUnavailable, "service unavailable")
	ErrTimeout     = NewSys(CodeTimeout, "request timed out")
)
