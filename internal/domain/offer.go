package domain

import (
	"strings"
	"time"
)

// OfferStatus is the offer lifecycle state.
type OfferStatus string

const (
	OfferDraft    OfferStatus = "draft"
	OfferSent     OfferStatus = "sent"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// ParseOfferStatus maps a wire value to a known status.
func ParseOfferStatus(value string) (OfferStatus, bool) {
	switch OfferStatus(strings.ToLower(strings.TrimSpace(value))) {
	case OfferDraft:
		return OfferDraft, true
	case OfferSent:
		return OfferSent, true
	case OfferAccepted:
		return OfferAccepted, true
	case OfferRejected:
		return OfferRejected, true
	default:
		return "", false
	}
}

// Terminal reports whether no transition leads out of the status.
func (s OfferStatus) Terminal() bool {
	return s == OfferAccepted || s == OfferRejected
}

// OfferItem is a line item embedded in an offer. Monetary values are integer
// minor units. Total is caller-supplied; subtotal/tax/total of the offer are
// recomputed from item totals.
type OfferItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`
}

// Offer is a commercial offer owned by one org. The totals identity
// subtotal + tax_amount == total holds for every persisted row.
type Offer struct {
	ID         int64
	OrgID      int64
	ClientID   int64
	TemplateID *int64
	Title      string
	Items      []OfferItem
	Subtotal   int64
	TaxRate    float64
	TaxAmount  int64
	Total      int64
	Status     OfferStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
