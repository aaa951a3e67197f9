package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/authz"
	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/repository"
)

// TemplateInput carries caller-editable template fields.
type TemplateInput struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// TemplateUpdateInput is a partial update; nil fields are left untouched.
type TemplateUpdateInput struct {
	Title    *string   `json:"title"`
	Slug     *string   `json:"slug"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// TemplateService owns template CRUD. All mutations require the admin role.
type TemplateService struct {
	templates repository.TemplateRepository
	node      *snowflake.Node
	logger    *zap.Logger
}

// NewTemplateService wires dependencies.
func NewTemplateService(templates repository.TemplateRepository, node *snowflake.Node, logger *zap.Logger) *TemplateService {
	if logger == nil {
		logger = zap.L()
	}
	return &TemplateService{templates: templates, node: node, logger: logger}
}

// List returns the caller's org's templates.
func (s *TemplateService) List(ctx context.Context, principal domain.Principal) ([]domain.Template, error) {
	if err := authz.RequireSession(principal); err != nil {
		return nil, err
	}
	return s.templates.List(ctx, principal.OrgID)
}

// Get loads one template scoped to the caller's org.
func (s *TemplateService) Get(ctx context.Context, principal domain.Principal, templateID int64) (domain.Template, error) {
	if err := authz.RequireSession(principal); err != nil {
		return domain.Template{}, err
	}
	return s.templates.GetByID(ctx, principal.OrgID, templateID)
}

// Create persists a new template. Slug collisions within the org surface as
// domain.ErrSlugConflict, distinct from generic validation failure.
func (s *TemplateService) Create(ctx context.Context, principal domain.Principal, input TemplateInput) (domain.Template, error) {
	if err := authz.RequireAdmin(principal); err != nil {
		return domain.Template{}, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return domain.Template{}, domain.NewValidationError("title", "must not be empty")
	}
	slug, err := normalizeSlug(input.Slug)
	if err != nil {
		return domain.Template{}, err
	}

	created, err := s.templates.Create(ctx, domain.Template{
		ID:       s.node.Generate().Int64(),
		OrgID:    principal.OrgID,
		Title:    strings.TrimSpace(input.Title),
		Slug:     slug,
		Content:  input.Content,
		Category: strings.TrimSpace(input.Category),
		Tags:     input.Tags,
	})
	if err != nil {
		return domain.Template{}, err
	}

	s.audit("template.created", principal, zap.Int64("template_id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

// Update applies a partial update within the caller's org.
func (s *TemplateService) Update(ctx context.Context, principal domain.Principal, templateID int64, input TemplateUpdateInput) (domain.Template, error) {
	if err := authz.RequireAdmin(principal); err != nil {
		return domain.Template{}, err
	}

	template, err := s.templates.GetByID(ctx, principal.OrgID, templateID)
	if err != nil {
		return domain.Template{}, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return domain.Template{}, domain.NewValidationError("title", "must not be empty")
		}
		template.Title = strings.TrimSpace(*input.Title)
	}
	if input.Slug != nil {
		slug, err := normalizeSlug(*input.Slug)
		if err != nil {
			return domain.Template{}, err
		}
		template.Slug = slug
	}
	if input.Content != nil {
		template.Content = *input.Content
	}
	if input.Category != nil {
		template.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		template.Tags = *input.Tags
	}

	updated, err := s.templates.Update(ctx, template)
	if err != nil {
		return domain.Template{}, err
	}

	s.audit("template.updated", principal, zap.Int64("template_id", updated.ID))
	return updated, nil
}

// Delete removes a template within the caller's org.
func (s *TemplateService) Delete(ctx context.Context, principal domain.Principal, templateID int64) error {
	if err := authz.RequireAdmin(principal); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, principal.OrgID, templateID); err != nil {
		return err
	}
	s.audit("template.deleted", principal, zap.Int64("template_id", templateID))
	return nil
}

func (s *TemplateService) audit(event string, principal domain.Principal, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("event", event),
		zap.Int64("org_id", principal.OrgID),
		zap.Int64("actor_id", principal.UserID),
	}, fields...)
	s.logger.Info("audit", all...)
}

func normalizeSlug(raw string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if slug == "" {
		return "", domain.NewValidationError("slug", "must not be empty")
	}
	if !slugPattern.MatchString(slug) {
		return "", domain.NewValidationError("slug", "must contain only lowercase letters, digits, and single dashes")
	}
	return slug, nil
}
