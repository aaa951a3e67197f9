package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/service"
)

func TestTemplateSlugConflictWithinOrg(t *testing.T) {
	repo := newMemoryTemplateRepo()
	svc := service.NewTemplateService(repo, newTestNode(t), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, adminOrgA, service.TemplateInput{Title: "Standard", Slug: "standard", Content: "body"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, adminOrgA, service.TemplateInput{Title: "Standard v2", Slug: "standard", Content: "body"})
	require.ErrorIs(t, err, domain.ErrSlugConflict)

	// The same slug in another org is fine.
	_, err = svc.Create(ctx, adminOrgB, service.TemplateInput{Title: "Standard", Slug: "standard", Content: "body"})
	require.NoError(t, err)
}

func TestTemplateSlugNormalized(t *testing.T) {
	repo := newMemoryTemplateRepo()
	svc := service.NewTemplateService(repo, newTestNode(t), zap.NewNop())

	created, err := svc.Create(context.Background(), adminOrgA, service.TemplateInput{
		Title:   "Monthly Retainer",
		Slug:    "  Monthly-Retainer  ",
		Content: "body",
	})
	require.NoError(t, err)
	require.Equal(t, "monthly-retainer", created.Slug)
}

func TestTemplateInvalidSlugRejected(t *testing.T) {
	svc := service.NewTemplateService(newMemoryTemplateRepo(), newTestNode(t), zap.NewNop())

	_, err := svc.Create(context.Background(), adminOrgA, service.TemplateInput{Title: "Bad", Slug: "no/slashes", Content: "body"})
	require.True(t, domain.IsValidation(err))
}

func TestTemplateTenantIsolation(t *testing.T) {
	repo := newMemoryTemplateRepo()
	svc := service.NewTemplateService(repo, newTestNode(t), zap.NewNop())
	ctx := context.Background()

	theirs, err := svc.Create(ctx, adminOrgB, service.TemplateInput{Title: "Foreign", Slug: "foreign", Content: "body"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, userOrgA, theirs.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, adminOrgA, theirs.ID), domain.ErrNotFound)
}

func TestTemplateMutationsRequireAdmin(t *testing.T) {
	repo := newMemoryTemplateRepo()
	svc := service.NewTemplateService(repo, newTestNode(t), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, userOrgA, service.TemplateInput{Title: "T", Slug: "t", Content: "body"})
	require.ErrorIs(t, err, domain.ErrForbidden)

	created, err := svc.Create(ctx, adminOrgA, service.TemplateInput{Title: "T", Slug: "t", Content: "body"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, userOrgA, created.ID, service.TemplateUpdateInput{})
	require.ErrorIs(t, err, domain.ErrForbidden)

	listed, err := svc.List(ctx, userOrgA)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
