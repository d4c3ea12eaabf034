package models

import "time"

// UserSession holds the backend cookie for one chat user (or the shared one).
// SealedSecret is the login password sealed with the bot secret and is the
// only material used for the automatic re-login.
type UserSession struct {
	Token              string    `json:"token"`
	Email              string    `json:"email"`
	SealedSecret       []byte    `json:"sealed_secret"`
	BackendUserID      int       `json:"backend_user_id"`
	BackendDisplayName string    `json:"backend_display_name"`
	CreatedAt          time.Time `json:"created_at"`
	RefreshedAt        time.Time `json:"refreshed_at"`
}

// IdentitySelection tags which backend user a chat user acts as in key mode.
type IdentitySelection struct {
	BackendUserID int       `json:"backend_user_id"`
	DisplayName   string    `json:"display_name"`
	SelectedAt    time.Time `json:"selected_at"`
}

// Identity is a backend user as listed by the identity picker.
type Identity struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}
