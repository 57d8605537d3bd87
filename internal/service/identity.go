package service

import (
	"strconv"
	"strings"
)

// Identity is the canonical caller identity resolved once at the session
// boundary. Older asana records stored the creator as an email address,
// newer ones as the decimal user id; a match on either form counts.
type Identity struct {
	UserID uint
	Email  string
}

// IsZero reports whether no caller identity is present.
func (i Identity) IsZero() bool {
	return i.UserID == 0 && strings.TrimSpace(i.Email) == ""
}

// Matches reports whether createdBy refers to this caller, accepting both
// historical identifier forms. An empty createdBy never matches anyone.
func (i Identity) Matches(createdBy string) bool {
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" || i.IsZero() {
		return false
	}
	if email := strings.TrimSpace(i.Email); email != "" && strings.EqualFold(createdBy, email) {
		return true
	}
	return i.UserID != 0 && createdBy == strconv.FormatUint(uint64(i.UserID), 10)
}

// String returns the preferred stored form of the identity.
func (i Identity) String() string {
	if email := strings.TrimSpace(i.Email); email != "" {
		return email
	}
	if i.UserID != 0 {
		return strconv.FormatUint(uint64(i.UserID), 10)
	}
	return ""
}
