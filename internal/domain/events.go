package domain

import "github.com/google/uuid"

const (
	EventSignedUp  = "auth.signed_up"
	EventSignedIn  = "auth.signed_in"
	EventSignedOut = "auth.signed_out"
)

type AuthEvent struct {
	UserID    int64     `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	Provider  string    `json:"provider"`
}
