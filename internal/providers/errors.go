package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"routegraph/dashboard/internal/constants"
)

// FieldError is one entry of the backend's validation error list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Timestamp string       `json:"timestamp"`
	Status    int          `json:"status"`
	Error     string       `json:"error"`
	Message   string       `json:"message"`
	Errors    []FieldError `json:"errors"`
}

// ProviderError is every failure returned by the backend client.
// Status is zero when no HTTP response was received.
type ProviderError struct {
	Code          string
	Status        int
	Message       string
	ServerMessage string
	FieldErrors   []FieldError
	Details       string
	Err           error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CodeOf returns the error code of a ProviderError anywhere in err's chain.
func CodeOf(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func IsNotFound(err error) bool { return CodeOf(err) == constants.ErrCodeNotFound }

func IsAuthError(err error) bool { return CodeOf(err) == constants.ErrCodeAuthenticationFailed }

// buildHTTPError classifies a non-2xx response.
func buildHTTPError(statusCode int, method, endpoint string, body []byte) *ProviderError {
	pe := &ProviderError{
		Status:  statusCode,
		Details: string(body),
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		pe.ServerMessage = strings.TrimSpace(parsed.Message)
		pe.FieldErrors = parsed.Errors
	} else if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		pe.ServerMessage = text
	}

	switch {
	case statusCode == http.StatusBadRequest:
		pe.Code = constants.ErrCodeValidation
	case statusCode == http.StatusUnauthorized:
		pe.Code = constants.ErrCodeAuthenticationFailed
	case statusCode == http.StatusForbidden:
		pe.Code = constants.ErrCodeForbidden
	case statusCode == http.StatusNotFound:
		pe.Code = constants.ErrCodeNotFound
	case statusCode == http.StatusConflict:
		pe.Code = constants.ErrCodeConflict
	case statusCode == http.StatusTooManyRequests:
		pe.Code = constants.ErrCodeRateLimited
	case statusCode >= 500:
		pe.Code = constants.ErrCodeServerError
	default:
		pe.Code = constants.ErrCodeInvalidDataFormat
	}
	pe.Message = fmt.Sprintf("%s %s failed with status %d", method, endpoint, statusCode)
	return pe
}

// UserMessage renders err as the text shown to the user. Field errors win,
// then the server's message, then a default for the status class, then fallback.
// A 401 always renders fallback so the caller's credential wording is kept.
func UserMessage(err error, fallback string) string {
	var pe *ProviderError
	if err == nil || !errors.As(err, &pe) {
		return fallback
	}
	if pe.Status == http.StatusUnauthorized {
		return fallback
	}

	if len(pe.FieldErrors) > 0 {
		parts := make([]string, 0, 3)
		for _, fe := range pe.FieldErrors {
			msg := strings.TrimSpace(fe.Message)
			field := strings.TrimSpace(fe.Field)
			switch {
			case msg != "" && field != "":
				parts = append(parts, field+": "+msg)
			case msg != "":
				parts = append(parts, msg)
			}
			if len(parts) == 3 {
				break
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	if pe.ServerMessage != "" {
		return pe.ServerMessage
	}

	switch {
	case pe.Status == http.StatusBadRequest:
		return constants.GetErrorMessage(constants.ErrCodeValidation)
	case pe.Status == http.StatusNotFound:
		return constants.GetErrorMessage(constants.ErrCodeNotFound)
	case pe.Status == http.StatusConflict:
		return constants.GetErrorMessage(constants.ErrCodeConflict)
	case pe.Status >= 500:
		return constants.GetErrorMessage(constants.ErrCodeServerError)
	case pe.Status == 0 && pe.Code != "":
		return constants.GetErrorMessage(pe.Code)
	}
	return fallback
}
