package dto

import "github.com/ecoleconnect/portail-api/internal/models"

// SessionResponse describes the caller's resolved role, where the client
// should land, and the capability set the client may consult.
type SessionResponse struct {
	Profile     *models.Profile    `json:"profile"`
	Role        models.Role        `json:"role"`
	RedirectTo  string             `json:"redirect_to,omitempty"`
	Permissions models.Permissions `json:"permissions"`
	// Diagnostic carries a non-fatal message when the profile lookup failed
	// and a default parent profile was synthesized. Clients may ignore it.
	Diagnostic string `json:"diagnostic,omitempty"`
}
