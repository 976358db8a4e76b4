package models

import (
	"routegraph/dashboard/internal/constants"
)

type User struct {
	ID       int64          `json:"id"`
	Username string         `json:"username"`
	Role     constants.Role `json:"role"`
}

type RoleChangeRequest struct {
	Role constants.Role `json:"role"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"notblank"`
}

// PasswordResetConfirm carries the emailed token and the new password.
// ConfirmPassword is only compared locally and never sent.
type PasswordResetConfirm struct {
	Token           string `json:"token" validate:"notblank"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=NewPassword"`
}

// Validate checks the email before a reset request is sent.
func (r PasswordResetRequest) Validate() error { return checkFirst(r) }

// Validate checks the token, the password length (constants.MinPasswordLength)
// and the confirmation, reporting the first failure.
func (r PasswordResetConfirm) Validate() error { return checkFirst(r) }
