package domain

import "unicode/utf8"

// MaxUsernameLength bounds display names.
const MaxUsernameLength = 32

// User is an externally registered participant. The display name is
// assigned at most once.
type User struct {
	ID       int64   `json:"-"`
	UserID   string  `json:"user_id"`
	Username *string `json:"username,omitempty"`
}

// HasUsername reports whether a non-empty display name has been assigned.
func (u *User) HasUsername() bool {
	return u.Username != nil && *u.Username != ""
}

// ValidateUsername checks a candidate display name.
func ValidateUsername(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}
