package offer

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// Totals carries the monetary fields recomputed from items and tax rate.
type Totals struct {
	Subtotal  int64
	TaxAmount int64
	Total     int64
}

// Engine validates offer state transitions and keeps monetary totals
// consistent. It is stateless; one instance serves all requests.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates the lifecycle engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.L()
	}
	return &Engine{logger: logger}
}

var legalTransitions = map[domain.OfferStatus][]domain.OfferStatus{
	domain.OfferDraft: {domain.OfferSent},
	domain.OfferSent:  {domain.OfferAccepted, domain.OfferRejected},
}

// RecomputeTotals derives subtotal, tax amount, and grand total from the
// supplied item totals. Tax is rounded half-up to the nearest minor unit.
// Callers must persist the result together with the items that produced it.
func (e *Engine) RecomputeTotals(items []domain.OfferItem, taxRate float64) (Totals, error) {
	if taxRate < 0 || taxRate > 100 {
		return Totals{}, domain.NewValidationError("tax_rate", "must be between 0 and 100")
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.Total
	}

	taxAmount := int64(math.Round(float64(subtotal) * taxRate / 100))
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal + taxAmount,
	}, nil
}

// ValidateItems checks line items before persistence. Item totals are
// caller-supplied and accepted as-is, but a total that disagrees with
// quantity * unit_price is logged so manual overrides stay visible.
func (e *Engine) ValidateItems(orgID int64, items []domain.OfferItem) error {
	for i, item := range items {
		if item.Quantity < 0 {
			return domain.NewValidationError("items", fmt.Sprintf("item %d: quantity must not be negative", i))
		}
		if item.UnitPrice < 0 {
			return domain.NewValidationError("items", fmt.Sprintf("item %d: unit price must not be negative", i))
		}
		if expected := item.Quantity * item.UnitPrice; item.Total != expected {
			e.logger.Warn("offer item total overrides quantity*unit_price",
				zap.Int64("org_id", orgID),
				zap.Int("item_index", i),
				zap.Int64("supplied_total", item.Total),
				zap.Int64("computed_total", expected),
			)
		}
	}
	return nil
}

// EnsureEditable rejects content mutation of offers that left draft. Title,
// items, and tax rate are frozen once an offer is sent.
func (e *Engine) EnsureEditable(offer domain.Offer) error {
	if offer.Status != domain.OfferDraft {
		return fmt.Errorf("%w: offer %d is %s, content edits require draft",
			domain.ErrInvalidTransition, offer.ID, offer.Status)
	}
	return nil
}

// Transition applies a status change. Only admins may move status, and only
// draft->sent, sent->accepted, sent->rejected are legal. The caller persists
// the returned offer atomically.
func (e *Engine) Transition(offer domain.Offer, target domain.OfferStatus, principal domain.Principal) (domain.Offer, error) {
	if !principal.IsAdmin() {
		return domain.Offer{}, domain.ErrForbidden
	}

	for _, allowed := range legalTransitions[offer.Status] {
		if allowed == target {
			e.logger.Info("audit",
				zap.String("event", "offer.transition"),
				zap.Int64("org_id", offer.OrgID),
				zap.Int64("offer_id", offer.ID),
				zap.String("from", string(offer.Status)),
				zap.String("to", string(target)),
				zap.Int64("actor_id", principal.UserID),
			)
			offer.Status = target
			return offer, nil
		}
	}

	return domain.Offer{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, offer.Status, target)
}
