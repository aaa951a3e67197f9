package domain

import "time"

// Client is a customer record owned by exactly one org. OrgID is stamped at
// creation and never mutated.
type Client struct {
	ID        int64
	OrgID     int64
	Name      string
	Company   string
	Email     string
	Phone     string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
