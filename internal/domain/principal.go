package domain

import (
	"strings"
	"time"
)

// Role is the caller's role within its org.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole maps free-form session metadata to a typed role. The second
// return value is false for unknown values so the resolution boundary can
// clamp instead of propagating whatever the session carried.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return RoleUser, false
	}
}

// Principal identifies an authenticated caller for the duration of one
// request. It is derived from verified session state and never persisted.
type Principal struct {
	UserID int64  `json:"user_id"`
	OrgID  int64  `json:"org_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// SessionKey is a per-org HMAC key used to verify session tokens issued by
// the identity provider. This service only verifies; issuance lives upstream.
type SessionKey struct {
	ID        int64
	OrgID     int64
	KID       string
	Secret    []byte
	Algorithm string
	IsActive  bool
	CreatedAt time.Time
	RotatedAt *time.Time
}
