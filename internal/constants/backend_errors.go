package constants

// Backend error codes. Every failed backend call is classified into one of these.
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeConflict             = "CONFLICT"
	ErrCodeServerError          = "SERVER_ERROR"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeDecodeError          = "DECODE_ERROR"
	ErrCodeInvalidDataFormat    = "INVALID_DATA_FORMAT"
)

// BackendErrorMessages holds the human-readable message for each code.
var BackendErrorMessages = map[string]string{
	ErrCodeValidation:           "Invalid request data. Check the entered values.",
	ErrCodeNotFound:             "The object was not found or has already been deleted.",
	ErrCodeConflict:             "Data conflict. The object already exists or constraints are violated.",
	ErrCodeServerError:          "The server failed. Try again later.",
	ErrCodeAuthenticationFailed: "Authentication failed",
	ErrCodeForbidden:            "You do not have permission to perform this action",
	ErrCodeRateLimited:          "Too many requests. Please try again later",
	ErrCodeNetworkError:         "Unable to reach the backend. Please check your connection",
	ErrCodeDecodeError:          "The backend sent a response that could not be read",
	ErrCodeInvalidDataFormat:    "The data format is invalid",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := BackendErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
