package offer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/offer"
)

func TestRecomputeTotals(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())

	totals, err := engine.RecomputeTotals([]domain.OfferItem{{Total: 10000}}, 20)
	require.NoError(t, err)
	require.Equal(t, int64(10000), totals.Subtotal)
	require.Equal(t, int64(2000), totals.TaxAmount)
	require.Equal(t, int64(12000), totals.Total)
}

func TestRecomputeTotalsRounding(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())

	// 333 * 7.5% = 24.975, half-up to 25.
	totals, err := engine.RecomputeTotals([]domain.OfferItem{{Total: 333}}, 7.5)
	require.NoError(t, err)
	require.Equal(t, int64(25), totals.TaxAmount)
	require.Equal(t, totals.Subtotal+totals.TaxAmount, totals.Total)

	// 10 * 5% = 0.5, half-up to 1.
	totals, err = engine.RecomputeTotals([]domain.OfferItem{{Total: 10}}, 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), totals.TaxAmount)
}

func TestRecomputeTotalsIdentity(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())

	items := []domain.OfferItem{{Total: 1999}, {Total: 4550}, {Total: 120}}
	for _, rate := range []float64{0, 0.5, 7.7, 19, 21, 100} {
		totals, err := engine.RecomputeTotals(items, rate)
		require.NoError(t, err)
		require.Equal(t, int64(6669), totals.Subtotal)
		require.Equal(t, totals.Subtotal+totals.TaxAmount, totals.Total, "rate %v", rate)
	}
}

func TestRecomputeTotalsRejectsTaxRateOutOfRange(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())

	_, err := engine.RecomputeTotals(nil, -1)
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))

	_, err = engine.RecomputeTotals(nil, 100.01)
	require.True(t, domain.IsValidation(err))
}

func TestValidateItemsRejectsNegatives(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())

	err := engine.ValidateItems(1, []domain.OfferItem{{Quantity: -1, UnitPrice: 100, Total: -100}})
	require.True(t, domain.IsValidation(err))

	err = engine.ValidateItems(1, []domain.OfferItem{{Quantity: 1, UnitPrice: -100, Total: -100}})
	require.True(t, domain.IsValidation(err))

	// Mismatched total is accepted (manual override) but not an error.
	err = engine.ValidateItems(1, []domain.OfferItem{{Quantity: 2, UnitPrice: 500, Total: 900}})
	require.NoError(t, err)
}

func TestTransitionLegality(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())
	admin := domain.Principal{UserID: 1, OrgID: 1, Role: domain.RoleAdmin}

	statuses := []domain.OfferStatus{domain.OfferDraft, domain.OfferSent, domain.OfferAccepted, domain.OfferRejected}
	legal := map[domain.OfferStatus]map[domain.OfferStatus]bool{
		domain.OfferDraft: {domain.OfferSent: true},
		domain.OfferSent:  {domain.OfferAccepted: true, domain.OfferRejected: true},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got, err := engine.Transition(domain.Offer{ID: 7, OrgID: 1, Status: from}, to, admin)
			if legal[from][to] {
				require.NoError(t, err, "%s -> %s", from, to)
				require.Equal(t, to, got.Status)
			} else {
				require.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	}
}

func TestTransitionRequiresAdmin(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())
	user := domain.Principal{UserID: 2, OrgID: 1, Role: domain.RoleUser}

	_, err := engine.Transition(domain.Offer{Status: domain.OfferDraft}, domain.OfferSent, user)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEnsureEditable(t *testing.T) {
	engine := offer.NewEngine(zap.NewNop())

	require.NoError(t, engine.EnsureEditable(domain.Offer{Status: domain.OfferDraft}))
	require.ErrorIs(t, engine.EnsureEditable(domain.Offer{Status: domain.OfferSent}), domain.ErrInvalidTransition)
	require.ErrorIs(t, engine.EnsureEditable(domain.Offer{Status: domain.OfferAccepted}), domain.ErrInvalidTransition)
}
