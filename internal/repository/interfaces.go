package repository

import (
	"context"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// Every method that touches a tenant-owned row takes orgID explicitly and
// must include it in the predicate. A row owned by another org behaves
// exactly like a missing row (domain.ErrNotFound).

// ClientRepository persists customer records.
type ClientRepository interface {
	List(ctx context.Context, orgID int64) ([]domain.Client, error)
	GetByID(ctx context.Context, orgID, clientID int64) (domain.Client, error)
	Create(ctx context.Context, client domain.Client) (domain.Client, error)
	Update(ctx context.Context, client domain.Client) (domain.Client, error)
	Delete(ctx context.Context, orgID, clientID int64) error
}

// TemplateRepository persists offer templates. Create/Update surface
// domain.ErrSlugConflict on (org_id, slug) collisions.
type TemplateRepository interface {
	List(ctx context.Context, orgID int64) ([]domain.Template, error)
	GetByID(ctx context.Context, orgID, templateID int64) (domain.Template, error)
	Create(ctx context.Context, template domain.Template) (domain.Template, error)
	Update(ctx context.Context, template domain.Template) (domain.Template, error)
	Delete(ctx context.Context, orgID, templateID int64) error
}

// OfferRepository persists offers. Create fails with domain.ErrNotFound when
// the referenced client does not exist in the offer's org; the service checks
// this before calling, and storage implementations enforce it again. Update
// writes items and all monetary fields in one statement so a reader never
// observes stale totals.
// UpdateStatus is a compare-and-set on the current status; it reports
// domain.ErrNotFound when no row matched (missing, cross-tenant, or moved on
// concurrently - callers re-read to distinguish).
type OfferRepository interface {
	List(ctx context.Context, orgID int64) ([]domain.Offer, error)
	GetByID(ctx context.Context, orgID, offerID int64) (domain.Offer, error)
	Create(ctx context.Context, offer domain.Offer) (domain.Offer, error)
	Update(ctx context.Context, offer domain.Offer) (domain.Offer, error)
	UpdateStatus(ctx context.Context, orgID, offerID int64, from, to domain.OfferStatus) (domain.Offer, error)
	Delete(ctx context.Context, orgID, offerID int64) error
}

// AllowlistRepository persists admin bootstrap allowlist entries.
type AllowlistRepository interface {
	List(ctx context.Context, orgID int64) ([]domain.AllowlistEntry, error)
	GetByEmail(ctx context.Context, orgID int64, email string) (domain.AllowlistEntry, error)
	Create(ctx context.Context, entry domain.AllowlistEntry) (domain.AllowlistEntry, error)
	// MarkUsed sets used_at once; it returns false when the entry is missing
	// or already used.
	MarkUsed(ctx context.Context, orgID int64, email string) (bool, error)
}

// SessionKeyRepository stores per-org session verification keys.
type SessionKeyRepository interface {
	GetActiveKey(ctx context.Context, orgID int64) (domain.SessionKey, error)
	CreateKey(ctx context.Context, key domain.SessionKey) (domain.SessionKey, error)
}
