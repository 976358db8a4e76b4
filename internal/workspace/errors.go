package workspace

import "errors"

var (
	ErrNotSignedIn = errors.New("sign in first")
	// ErrAdminOnly hides admin tabs from other roles. The backend still
	// enforces the role on every call.
	ErrAdminOnly  = errors.New("admin role required")
	ErrUnknownTab = errors.New("unknown tab")
)
