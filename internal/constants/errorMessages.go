package constants

// Fallback messages shown when the backend gives nothing better.
const (
	MsgLoginFailed          = "Invalid username or password"
	MsgLoginFailedGeneric   = "Could not sign in. Check your username and password."
	MsgFetchRoutesFailed    = "Could not load routes"
	MsgFetchLocationsFailed = "Could not load locations"
	MsgFetchCoordsFailed    = "Could not load coordinates"
	MsgFetchImportsMine     = "Could not load import operations"
	MsgFetchImportsAll      = "Could not load the list of all import operations"
	MsgFetchUsersFailed     = "Could not load the list of users"
	MsgChangeRoleFailed     = "Could not change the user's role"
	MsgSaveRouteFailed      = "Error while saving the route"
	MsgDeleteRouteFailed    = "Could not delete the route"
	MsgSaveLocationFailed   = "Could not save the location"
	MsgSaveCoordsFailed     = "Could not save the coordinates"
	MsgSearchFailed         = "Error while fetching the record"
	MsgImportFailed         = "Could not start the import"
	MsgResetRequestFailed   = "Could not send the password reset email"
	MsgResetConfirmFailed   = "Could not change the password. Check the link or request a reset again."
	MsgSignInFirst          = "Sign in first"
)

// Client-side validation messages.
const (
	MsgSearchIDRequired   = "Enter an ID"
	MsgSearchIDInvalid    = "ID must be a positive integer"
	MsgResetTokenMissing  = "The link has no token. Open the link from the email or request a reset again."
	MsgPasswordsDiffer    = "Passwords do not match."
	MsgPasswordTooShort   = "Password must be at least 6 characters."
	MsgEmailRequired      = "Email is required"
	MsgSortByInvalid      = "sortBy must be one of id, distance, rating, name"
	MsgRoleChangeInFlight = "A role change for this user is already in progress"
)
