package domain

import "time"

// Template is a reusable offer body. (org_id, slug) is unique.
type Template struct {
	ID        int64
	OrgID     int64
	Title     string
	Slug      string
	Content   string
	Category  string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
