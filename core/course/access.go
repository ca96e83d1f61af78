package course

import "errors"

var (
	// access gate denials; each maps to a distinct user-facing message and
	// HTTP status, never conflated into a generic "forbidden".
	ErrCourseNotAvailable     = errors.New("course not available")
	ErrPaymentRequired        = errors.New("payment required for this course")
	ErrAuthenticationRequired = errors.New("authentication required")
)

// Viewer is the identity attempting to view content; the zero value is an
// anonymous visitor.
type Viewer struct {
	Authenticated bool
	UserID        string
	IsAdmin       bool
}

// Anonymous is the unauthenticated viewer.
var Anonymous = Viewer{}

// Authorize decides whether a viewer may access a course's playable
// content. The gate applies to the playable resource, not its existence:
// metadata listings stay visible regardless of the outcome.
//
//	admin                           → allow
//	unpublished course              → CourseNotAvailable
//	published, free                 → allow
//	published, paid, verified       → allow
//	published, paid, anonymous      → AuthenticationRequired
//	published, paid, unverified     → PaymentRequired
func Authorize(v Viewer, c Course, hasVerifiedAccess bool) error {
	if v.IsAdmin {
		return nil
	}
	if !c.IsPublished {
		return ErrCourseNotAvailable
	}
	if c.IsFree() {
		return nil
	}
	if !v.Authenticated {
		return ErrAuthenticationRequired
	}
	if hasVerifiedAccess {
		return nil
	}
	return ErrPaymentRequired
}
