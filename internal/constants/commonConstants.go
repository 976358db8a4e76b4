package constants

import "time"

type (
	APIStatus     string
	CachePrefix   string
	ImportsScope  string
	PagePlacement string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixIdentity  CachePrefix = "identity:"
	CachePrefixWorkspace CachePrefix = "workspace:"
)

const (
	ImportsScopeMine ImportsScope = "my"
	ImportsScopeAll  ImportsScope = "all"
)

// Valid reports whether s names a known import listing.
func (s ImportsScope) Valid() bool {
	return s == ImportsScopeMine || s == ImportsScopeAll
}

const (
	// PlacementOptimistic unshifts a confirmed create into the loaded page
	// without recomputing slice boundaries.
	PlacementOptimistic PagePlacement = "optimistic"
	// PlacementRefetch reloads the current page after every confirmed mutation.
	PlacementRefetch PagePlacement = "refetch"
)

const (
	DefaultRoutesPageSize      = 10
	DefaultReconnectDelay      = 5 * time.Second
	DefaultImportWatchInterval = 3 * time.Second
	DefaultImportWatchDeadline = 5 * time.Minute
	DefaultSessionTTL          = 12 * time.Hour

	SessionCookieName   = "dashboard_session"
	ResetPasswordPrefix = "/reset-password"

	MinPasswordLength = 6
)
