package models

// FetchStatus is the lifecycle of a store's bulk listing.
type FetchStatus string

const (
	StatusIdle      FetchStatus = "idle"
	StatusLoading   FetchStatus = "loading"
	StatusSucceeded FetchStatus = "succeeded"
	StatusFailed    FetchStatus = "failed"
)

// AuthStatus is the lifecycle of a session's sign-in.
type AuthStatus string

const (
	AuthIdle          AuthStatus = "idle"
	AuthLoading       AuthStatus = "loading"
	AuthAuthenticated AuthStatus = "authenticated"
	AuthError         AuthStatus = "error"
)
