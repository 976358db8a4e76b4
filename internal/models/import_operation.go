package models

// ImportStatus values reported by the backend. Unknown strings are kept as-is.
type ImportStatus string

const (
	ImportPending ImportStatus = "PENDING"
	ImportRunning ImportStatus = "RUNNING"
	ImportSuccess ImportStatus = "SUCCESS"
	ImportFailed  ImportStatus = "FAILED"
)

// InProgress reports whether the operation may still change state.
func (s ImportStatus) InProgress() bool {
	return s == ImportPending || s == ImportRunning
}

type ImportOperation struct {
	ID               int64        `json:"id"`
	Username         string       `json:"username"`
	ObjectType       string       `json:"objectType"`
	Status           ImportStatus `json:"status"`
	ImportedCount    *int64       `json:"importedCount,omitempty"`
	ErrorMessage     *string      `json:"errorMessage,omitempty"`
	StartedAt        *string      `json:"startedAt,omitempty"`
	FinishedAt       *string      `json:"finishedAt,omitempty"`
	FileObjectKey    *string      `json:"fileObjectKey,omitempty"`
	FileOriginalName *string      `json:"fileOriginalName,omitempty"`
	FileContentType  *string      `json:"fileContentType,omitempty"`
	FileSizeBytes    *int64       `json:"fileSizeBytes,omitempty"`
}
