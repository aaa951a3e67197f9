package domain

import (
	"strings"
	"time"
)

// AllowlistEntry marks an email as eligible for the admin role at
// registration time. (org_id, email) is unique; UsedAt is set exactly once.
type AllowlistEntry struct {
	ID        int64
	OrgID     int64
	Email     string
	CreatedBy string
	CreatedAt time.Time
	UsedAt    *time.Time
}

// NormalizeEmail canonicalizes an email for allowlist comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
