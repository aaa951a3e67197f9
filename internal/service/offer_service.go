package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/adapter/pdfrender"
	"github.com/smallbiznis/valora-offers/internal/authz"
	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/offer"
	"github.com/smallbiznis/valora-offers/internal/repository"
)

// OfferCreateInput carries the fields a caller supplies when opening a draft.
type OfferCreateInput struct {
	ClientID   int64              `json:"client_id"`
	TemplateID *int64             `json:"template_id"`
	Title      string             `json:"title"`
	Items      []domain.OfferItem `json:"items"`
	TaxRate    float64            `json:"tax_rate"`
}

// OfferUpdateInput is a partial content update, legal only on drafts.
type OfferUpdateInput struct {
	Title   *string             `json:"title"`
	Items   *[]domain.OfferItem `json:"items"`
	TaxRate *float64            `json:"tax_rate"`
}

// OfferService composes the guard, the lifecycle engine, and the repository.
// Content edits need a session; status transitions and deletes need ADMIN.
type OfferService struct {
	offers    repository.OfferRepository
	clients   repository.ClientRepository
	templates repository.TemplateRepository
	engine    *offer.Engine
	renderer  pdfrender.Renderer
	node      *snowflake.Node
	logger    *zap.Logger
}

// NewOfferService wires dependencies.
func NewOfferService(
	offers repository.OfferRepository,
	clients repository.ClientRepository,
	templates repository.TemplateRepository,
	engine *offer.Engine,
	renderer pdfrender.Renderer,
	node *snowflake.Node,
	logger *zap.Logger,
) *OfferService {
	if logger == nil {
		logger = zap.L()
	}
	return &OfferService{
		offers:    offers,
		clients:   clients,
		templates: templates,
		engine:    engine,
		renderer:  renderer,
		node:      node,
		logger:    logger,
	}
}

// List returns the caller's org's offers.
func (s *OfferService) List(ctx context.Context, principal domain.Principal) ([]domain.Offer, error) {
	if err := authz.RequireSession(principal); err != nil {
		return nil, err
	}
	return s.offers.List(ctx, principal.OrgID)
}

// Get loads one offer scoped to the caller's org.
func (s *OfferService) Get(ctx context.Context, principal domain.Principal, offerID int64) (domain.Offer, error) {
	if err := authz.RequireSession(principal); err != nil {
		return domain.Offer{}, err
	}
	return s.offers.GetByID(ctx, principal.OrgID, offerID)
}

// Create opens a draft offer. The client reference is resolved inside the
// caller's org only; a client owned elsewhere fails as NotFound.
func (s *OfferService) Create(ctx context.Context, principal domain.Principal, input OfferCreateInput) (domain.Offer, error) {
	if err := authz.RequireSession(principal); err != nil {
		return domain.Offer{}, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return domain.Offer{}, domain.NewValidationError("title", "must not be empty")
	}
	if input.ClientID == 0 {
		return domain.Offer{}, domain.NewValidationError("client_id", "must reference a client")
	}

	// The client reference must resolve inside the caller's org regardless of
	// which repository implementation backs the store; the postgres repo's
	// insert predicate re-checks this at the storage layer.
	if _, err := s.clients.GetByID(ctx, principal.OrgID, input.ClientID); err != nil {
		return domain.Offer{}, err
	}

	items := ensureItemIDs(input.Items)
	if err := s.engine.ValidateItems(principal.OrgID, items); err != nil {
		return domain.Offer{}, err
	}
	totals, err := s.engine.RecomputeTotals(items, input.TaxRate)
	if err != nil {
		return domain.Offer{}, err
	}

	if input.TemplateID != nil {
		if _, err := s.templates.GetByID(ctx, principal.OrgID, *input.TemplateID); err != nil {
			return domain.Offer{}, err
		}
	}

	created, err := s.offers.Create(ctx, domain.Offer{
		ID:         s.node.Generate().Int64(),
		OrgID:      principal.OrgID,
		ClientID:   input.ClientID,
		TemplateID: input.TemplateID,
		Title:      strings.TrimSpace(input.Title),
		Items:      items,
		Subtotal:   totals.Subtotal,
		TaxRate:    input.TaxRate,
		TaxAmount:  totals.TaxAmount,
		Total:      totals.Total,
		Status:     domain.OfferDraft,
	})
	if err != nil {
		return domain.Offer{}, err
	}

	s.audit("offer.created", principal, zap.Int64("offer_id", created.ID), zap.Int64("client_id", created.ClientID))
	return created, nil
}

// UpdateContent edits title, items, or tax rate of a draft. Totals are
// recomputed and persisted together with the items in one write; content on
// offers that left draft is frozen.
func (s *OfferService) UpdateContent(ctx context.Context, principal domain.Principal, offerID int64, input OfferUpdateInput) (domain.Offer, error) {
	if err := authz.RequireSession(principal); err != nil {
		return domain.Offer{}, err
	}

	current, err := s.offers.GetByID(ctx, principal.OrgID, offerID)
	if err != nil {
		return domain.Offer{}, err
	}
	if err := s.engine.EnsureEditable(current); err != nil {
		return domain.Offer{}, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return domain.Offer{}, domain.NewValidationError("title", "must not be empty")
		}
		current.Title = strings.TrimSpace(*input.Title)
	}
	if input.Items != nil {
		current.Items = ensureItemIDs(*input.Items)
	}
	if input.TaxRate != nil {
		current.TaxRate = *input.TaxRate
	}

	if err := s.engine.ValidateItems(principal.OrgID, current.Items); err != nil {
		return domain.Offer{}, err
	}
	totals, err := s.engine.RecomputeTotals(current.Items, current.TaxRate)
	if err != nil {
		return domain.Offer{}, err
	}
	current.Subtotal = totals.Subtotal
	current.TaxAmount = totals.TaxAmount
	current.Total = totals.Total

	updated, err := s.offers.Update(ctx, current)
	if err != nil {
		return domain.Offer{}, err
	}

	s.audit("offer.updated", principal, zap.Int64("offer_id", updated.ID))
	return updated, nil
}

// Transition moves an offer's status. The write is a compare-and-set on the
// previously observed status, so two concurrent transitions cannot both win.
func (s *OfferService) Transition(ctx context.Context, principal domain.Principal, offerID int64, target domain.OfferStatus) (domain.Offer, error) {
	if err := authz.RequireAdmin(principal); err != nil {
		return domain.Offer{}, err
	}

	current, err := s.offers.GetByID(ctx, principal.OrgID, offerID)
	if err != nil {
		return domain.Offer{}, err
	}

	validated, err := s.engine.Transition(current, target, principal)
	if err != nil {
		return domain.Offer{}, err
	}

	updated, err := s.offers.UpdateStatus(ctx, principal.OrgID, offerID, current.Status, validated.Status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The row existed a moment ago; if it still does, a concurrent
			// transition won the race.
			if _, reread := s.offers.GetByID(ctx, principal.OrgID, offerID); reread == nil {
				return domain.Offer{}, domain.ErrInvalidTransition
			}
		}
		return domain.Offer{}, err
	}

	return updated, nil
}

// Delete removes an offer within the caller's org.
func (s *OfferService) Delete(ctx context.Context, principal domain.Principal, offerID int64) error {
	if err := authz.RequireAdmin(principal); err != nil {
		return err
	}
	if err := s.offers.Delete(ctx, principal.OrgID, offerID); err != nil {
		return err
	}
	s.audit("offer.deleted", principal, zap.Int64("offer_id", offerID))
	return nil
}

// RenderPDF assembles the already-authorized, already-tenant-scoped offer
// data and hands it to the external renderer.
func (s *OfferService) RenderPDF(ctx context.Context, principal domain.Principal, offerID int64) ([]byte, error) {
	if err := authz.RequireSession(principal); err != nil {
		return nil, err
	}

	current, err := s.offers.GetByID(ctx, principal.OrgID, offerID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, principal.OrgID, current.ClientID)
	if err != nil {
		return nil, err
	}

	input := pdfrender.Input{Client: client, Offer: current}
	if current.TemplateID != nil {
		template, err := s.templates.GetByID(ctx, principal.OrgID, *current.TemplateID)
		if err == nil {
			input.Template = &template
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	return s.renderer.Render(ctx, input)
}

func (s *OfferService) audit(event string, principal domain.Principal, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("event", event),
		zap.Int64("org_id", principal.OrgID),
		zap.Int64("actor_id", principal.UserID),
	}, fields...)
	s.logger.Info("audit", all...)
}

func ensureItemIDs(items []domain.OfferItem) []domain.OfferItem {
	out := make([]domain.OfferItem, len(items))
	copy(out, items)
	for i := range out {
		if strings.TrimSpace(out[i].ID) == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
