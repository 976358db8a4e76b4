package store

import "errors"

var (
	// ErrNotLoaded is returned when an event targets a page that was never fetched.
	ErrNotLoaded = errors.New("page not loaded")
	// ErrRoleChangeInProgress rejects a second role change for the same user.
	ErrRoleChangeInProgress = errors.New("role change already in progress for this user")
	// ErrInvalidID rejects a search id that is not a positive integer.
	ErrInvalidID = errors.New("id must be a positive integer")
	// ErrInvalidScope rejects an unknown imports listing.
	ErrInvalidScope = errors.New("unknown imports scope")
	// ErrMissingCredentials rejects a login with a blank username or password.
	ErrMissingCredentials = errors.New("username and password are required")
)
