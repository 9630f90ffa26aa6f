package domain

import "strings"

// AnonymousUserID is the marker stamped on documents written without a
// real authenticated principal.
const AnonymousUserID = "anonymous"

// User is the shaped account record presented to the UI and persisted
// in the local session cache.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UID      string `json:"uid"`
}

// NewUserFromLogin derives the shaped record for a successful login.
// The username is the local part of the email address.
func NewUserFromLogin(uid, email string) *User {
	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}
	return &User{
		ID:       uid,
		Username: username,
		Email:    email,
		UID:      uid,
	}
}
