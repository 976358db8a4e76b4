package auth

import (
	"encoding/base64"

	"routegraph/dashboard/internal/constants"
)

// Identity is the authenticated user of one dashboard session.
type Identity struct {
	Username string         `json:"username"`
	Role     constants.Role `json:"role"`
	Token    string         `json:"token"`
}

func (i Identity) IsAdmin() bool { return i.Role == constants.RoleAdmin }

// Valid reports whether the identity carries everything needed to call the backend.
func (i Identity) Valid() bool {
	return i.Username != "" && i.Token != "" && i.Role != ""
}

// BasicToken encodes username and password for the Basic Authorization header.
func BasicToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
