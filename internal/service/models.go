package service

import (
	"time"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// ClientView is the wire representation of a client.
type ClientView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateView is the wire representation of a template.
type TemplateView struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OfferView is the wire representation of an offer.
type OfferView struct {
	ID         int64              `json:"id"`
	ClientID   int64              `json:"client_id"`
	TemplateID *int64             `json:"template_id,omitempty"`
	Title      string             `json:"title"`
	Items      []domain.OfferItem `json:"items"`
	Subtotal   int64              `json:"subtotal"`
	TaxRate    float64            `json:"tax_rate"`
	TaxAmount  int64              `json:"tax_amount"`
	Total      int64              `json:"total"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AllowlistEntryView is the wire representation of an allowlist entry.
type AllowlistEntryView struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// The org id is deliberately absent from every view: callers already know
// their own org and must never learn another's.

// NewClientView maps a domain client.
func NewClientView(c domain.Client) ClientView {
	return ClientView{
		ID:        c.ID,
		Name:      c.Name,
		Company:   c.Company,
		Email:     c.Email,
		Phone:     c.Phone,
		Tags:      c.Tags,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewTemplateView maps a domain template.
func NewTemplateView(t domain.Template) TemplateView {
	return TemplateView{
		ID:        t.ID,
		Title:     t.Title,
		Slug:      t.Slug,
		Content:   t.Content,
		Category:  t.Category,
		Tags:      t.Tags,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// NewOfferView maps a domain offer.
func NewOfferView(o domain.Offer) OfferView {
	return OfferView{
		ID:         o.ID,
		ClientID:   o.ClientID,
		TemplateID: o.TemplateID,
		Title:      o.Title,
		Items:      o.Items,
		Subtotal:   o.Subtotal,
		TaxRate:    o.TaxRate,
		TaxAmount:  o.TaxAmount,
		Total:      o.Total,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// NewAllowlistEntryView maps a domain allowlist entry.
func NewAllowlistEntryView(e domain.AllowlistEntry) AllowlistEntryView {
	return AllowlistEntryView{
		ID:        e.ID,
		Email:     e.Email,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UsedAt:    e.UsedAt,
	}
}
