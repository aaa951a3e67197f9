package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/authz"
	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/repository"
)

// ClientInput carries the caller-editable client fields. It has no org
// field on purpose; the org always comes from the principal.
type ClientInput struct {
	Name    string   `json:"name"`
	Company string   `json:"company"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Tags    []string `json:"tags"`
}

// ClientUpdateInput is a partial update; nil fields are left untouched.
type ClientUpdateInput struct {
	Name    *string   `json:"name"`
	Company *string   `json:"company"`
	Email   *string   `json:"email"`
	Phone   *string   `json:"phone"`
	Tags    *[]string `json:"tags"`
}

// ImportOutcome summarizes a bulk create.
type ImportOutcome struct {
	Created []ClientView  `json:"created"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError reports one rejected row.
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ClientService owns client CRUD. Reads require a session, mutations the
// admin role; both checks run before any repository access.
type ClientService struct {
	clients repository.ClientRepository
	node    *snowflake.Node
	logger  *zap.Logger
}

// NewClientService wires dependencies.
func NewClientService(clients repository.ClientRepository, node *snowflake.Node, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.L()
	}
	return &ClientService{clients: clients, node: node, logger: logger}
}

// List returns the caller's org's clients.
func (s *ClientService) List(ctx context.Context, principal domain.Principal) ([]domain.Client, error) {
	if err := authz.RequireSession(principal); err != nil {
		return nil, err
	}
	return s.clients.List(ctx, principal.OrgID)
}

// Get loads one client scoped to the caller's org.
func (s *ClientService) Get(ctx context.Context, principal domain.Principal, clientID int64) (domain.Client, error) {
	if err := authz.RequireSession(principal); err != nil {
		return domain.Client{}, err
	}
	return s.clients.GetByID(ctx, principal.OrgID, clientID)
}

// Create persists a new client stamped with the caller's org.
func (s *ClientService) Create(ctx context.Context, principal domain.Principal, input ClientInput) (domain.Client, error) {
	if err := authz.RequireAdmin(principal); err != nil {
		return domain.Client{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return domain.Client{}, domain.NewValidationError("name", "must not be empty")
	}

	created, err := s.clients.Create(ctx, domain.Client{
		ID:      s.node.Generate().Int64(),
		OrgID:   principal.OrgID,
		Name:    strings.TrimSpace(input.Name),
		Company: strings.TrimSpace(input.Company),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Tags:    input.Tags,
	})
	if err != nil {
		return domain.Client{}, err
	}

	s.audit("client.created", principal, zap.Int64("client_id", created.ID))
	return created, nil
}

// BulkCreate is the write boundary the CSV importer calls: each parsed row
// goes through the exact same path as a single create, so tenant stamping
// and validation apply identically. Row failures do not abort the batch.
func (s *ClientService) BulkCreate(ctx context.Context, principal domain.Principal, rows []ClientInput) (ImportOutcome, error) {
	if err := authz.RequireAdmin(principal); err != nil {
		return ImportOutcome{}, err
	}

	var outcome ImportOutcome
	for i, row := range rows {
		created, err := s.Create(ctx, principal, row)
		if err != nil {
			outcome.Errors = append(outcome.Errors, ImportError{Row: i, Reason: err.Error()})
			continue
		}
		outcome.Created = append(outcome.Created, NewClientView(created))
	}
	return outcome, nil
}

// Update applies a partial update within the caller's org.
func (s *ClientService) Update(ctx context.Context, principal domain.Principal, clientID int64, input ClientUpdateInput) (domain.Client, error) {
	if err := authz.RequireAdmin(principal); err != nil {
		return domain.Client{}, err
	}

	client, err := s.clients.GetByID(ctx, principal.OrgID, clientID)
	if err != nil {
		return domain.Client{}, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return domain.Client{}, domain.NewValidationError("name", "must not be empty")
		}
		client.Name = strings.TrimSpace(*input.Name)
	}
	if input.Company != nil {
		client.Company = strings.TrimSpace(*input.Company)
	}
	if input.Email != nil {
		client.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		client.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Tags != nil {
		client.Tags = *input.Tags
	}

	updated, err := s.clients.Update(ctx, client)
	if err != nil {
		return domain.Client{}, err
	}

	s.audit("client.updated", principal, zap.Int64("client_id", updated.ID))
	return updated, nil
}

// Delete removes a client within the caller's org.
func (s *ClientService) Delete(ctx context.Context, principal domain.Principal, clientID int64) error {
	if err := authz.RequireAdmin(principal); err != nil {
		return err
	}
	if err := s.clients.Delete(ctx, principal.OrgID, clientID); err != nil {
		return err
	}
	s.audit("client.deleted", principal, zap.Int64("client_id", clientID))
	return nil
}

func (s *ClientService) audit(event string, principal domain.Principal, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("event", event),
		zap.Int64("org_id", principal.OrgID),
		zap.Int64("actor_id", principal.UserID),
	}, fields...)
	s.logger.Info("audit", all...)
}
