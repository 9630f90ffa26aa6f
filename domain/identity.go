package domain

import "time"

// Identity is the remote auth principal currently held by the session
// manager, either a real account or an anonymous one.
type Identity struct {
	UID       string    `json:"uid"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Anonymous bool      `json:"anonymous"`
}

// UserID returns the id to stamp on writes, falling back to the
// anonymous marker when no principal is held.
func (i *Identity) UserID() string {
	if i == nil || i.UID == "" {
		return AnonymousUserID
	}
	return i.UID
}

// IsExpired reports whether the identity token is past its expiry at
// the given reference instant.
func (i *Identity) IsExpired(reference time.Time) bool {
	if i == nil {
		return true
	}
	if i.ExpiresAt.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !i.ExpiresAt.After(reference)
}
