package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
)

// APIResponse is the envelope of every dashboard API response.
type APIResponse struct {
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	ResponseTime string      `json:"response_time"`
	Data         interface{} `json:"data,omitempty"`
}

func GetResponseTime(init time.Time) string {
	return fmt.Sprintf("%dms", time.Since(init).Milliseconds())
}

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	writeJSON(w, code, APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	})
}

// RespondError sends a standardized JSON error response. message is what the
// user sees; err is only logged.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}
	if err != nil && code >= http.StatusInternalServerError {
		logging.Error("request failed", "status", code, "error", err)
	}

	writeJSON(w, code, APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
	})
}

// RespondErrorData is RespondError with a payload, used when the client
// needs the refreshed state alongside the failure.
func RespondErrorData(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode int) {
	writeJSON(w, statusCode, APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	})
}

func writeJSON(w http.ResponseWriter, code int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}
