package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// Compile-time interface assertions.
var (
	_ ClientRepository     = (*PostgresClientRepo)(nil)
	_ TemplateRepository   = (*PostgresTemplateRepo)(nil)
	_ OfferRepository      = (*PostgresOfferRepo)(nil)
	_ AllowlistRepository  = (*PostgresAllowlistRepo)(nil)
	_ SessionKeyRepository = (*PostgresSessionKeyRepo)(nil)
)

// PostgresClientRepo implements ClientRepository on pgx.
type PostgresClientRepo struct {
	db *pgxpool.Pool
}

func NewPostgresClientRepo(pool *pgxpool.Pool) *PostgresClientRepo {
	return &PostgresClientRepo{db: pool}
}

const clientColumns = `id, org_id, name, company, email, phone, tags, created_at, updated_at`

func (r *PostgresClientRepo) List(ctx context.Context, orgID int64) ([]domain.Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, mapError("list clients", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, mapError("scan client", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *PostgresClientRepo) GetByID(ctx context.Context, orgID, clientID int64) (domain.Client, error) {
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE org_id = $1 AND id = $2`, orgID, clientID)
	client, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapError("get client", err)
	}
	return client, nil
}

func (r *PostgresClientRepo) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO clients (id, org_id, name, company, email, phone, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+clientColumns,
		client.ID, client.OrgID, client.Name, client.Company, client.Email, client.Phone, client.Tags,
	)
	created, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapError("create client", err)
	}
	return created, nil
}

func (r *PostgresClientRepo) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	// org_id is a predicate, never an assignment.
	row := r.db.QueryRow(ctx, `
UPDATE clients
SET name = $3, company = $4, email = $5, phone = $6, tags = $7, updated_at = now()
WHERE org_id = $1 AND id = $2
RETURNING `+clientColumns,
		client.OrgID, client.ID, client.Name, client.Company, client.Email, client.Phone, client.Tags,
	)
	updated, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapError("update client", err)
	}
	return updated, nil
}

func (r *PostgresClientRepo) Delete(ctx context.Context, orgID, clientID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE org_id = $1 AND id = $2`, orgID, clientID)
	if err != nil {
		return mapError("delete client", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (domain.Client, error) {
	var c domain.Client
	if err := row.Scan(&c.ID, &c.OrgID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Tags, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

// PostgresTemplateRepo implements TemplateRepository on pgx.
type PostgresTemplateRepo struct {
	db *pgxpool.Pool
}

func NewPostgresTemplateRepo(pool *pgxpool.Pool) *PostgresTemplateRepo {
	return &PostgresTemplateRepo{db: pool}
}

const templateColumns = `id, org_id, title, slug, content, category, tags, created_at, updated_at`

func (r *PostgresTemplateRepo) List(ctx context.Context, orgID int64) ([]domain.Template, error) {
	rows, err := r.db.Query(ctx, `SELECT `+templateColumns+` FROM templates WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, mapError("list templates", err)
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, mapError("scan template", err)
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (r *PostgresTemplateRepo) GetByID(ctx context.Context, orgID, templateID int64) (domain.Template, error) {
	row := r.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE org_id = $1 AND id = $2`, orgID, templateID)
	tmpl, err := scanTemplate(row)
	if err != nil {
		return domain.Template{}, mapError("get template", err)
	}
	return tmpl, nil
}

func (r *PostgresTemplateRepo) Create(ctx context.Context, template domain.Template) (domain.Template, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO templates (id, org_id, title, slug, content, category, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+templateColumns,
		template.ID, template.OrgID, template.Title, template.Slug, template.Content, template.Category, template.Tags,
	)
	created, err := scanTemplate(row)
	if err != nil {
		return domain.Template{}, mapError("create template", err)
	}
	return created, nil
}

func (r *PostgresTemplateRepo) Update(ctx context.Context, template domain.Template) (domain.Template, error) {
	row := r.db.QueryRow(ctx, `
UPDATE templates
SET title = $3, slug = $4, content = $5, category = $6, tags = $7, updated_at = now()
WHERE org_id = $1 AND id = $2
RETURNING `+templateColumns,
		template.OrgID, template.ID, template.Title, template.Slug, template.Content, template.Category, template.Tags,
	)
	updated, err := scanTemplate(row)
	if err != nil {
		return domain.Template{}, mapError("update template", err)
	}
	return updated, nil
}

func (r *PostgresTemplateRepo) Delete(ctx context.Context, orgID, templateID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM templates WHERE org_id = $1 AND id = $2`, orgID, templateID)
	if err != nil {
		return mapError("delete template", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTemplate(row rowScanner) (domain.Template, error) {
	var t domain.Template
	if err := row.Scan(&t.ID, &t.OrgID, &t.Title, &t.Slug, &t.Content, &t.Category, &t.Tags, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Template{}, err
	}
	return t, nil
}

// PostgresOfferRepo implements OfferRepository on pgx. Items live in a JSONB
// column; monetary fields are written together with items in one statement.
type PostgresOfferRepo struct {
	db *pgxpool.Pool
}

func NewPostgresOfferRepo(pool *pgxpool.Pool) *PostgresOfferRepo {
	return &PostgresOfferRepo{db: pool}
}

const offerColumns = `id, org_id, client_id, template_id, title, items, subtotal, tax_rate, tax_amount, total, status, created_at, updated_at`

func (r *PostgresOfferRepo) List(ctx context.Context, orgID int64) ([]domain.Offer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+offerColumns+` FROM offers WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, mapError("list offers", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, mapError("scan offer", err)
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

func (r *PostgresOfferRepo) GetByID(ctx context.Context, orgID, offerID int64) (domain.Offer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE org_id = $1 AND id = $2`, orgID, offerID)
	offer, err := scanOffer(row)
	if err != nil {
		return domain.Offer{}, mapError("get offer", err)
	}
	return offer, nil
}

func (r *PostgresOfferRepo) Create(ctx context.Context, offer domain.Offer) (domain.Offer, error) {
	items, err := json.Marshal(offer.Items)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("encode items: %w", err)
	}

	// The client reference is checked against the same org in the INSERT
	// predicate; a cross-org client_id fails exactly like a missing one.
	row := r.db.QueryRow(ctx, `
INSERT INTO offers (id, org_id, client_id, template_id, title, items, subtotal, tax_rate, tax_amount, total, status)
SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
WHERE EXISTS (SELECT 1 FROM clients WHERE org_id = $2 AND id = $3)
RETURNING `+offerColumns,
		offer.ID, offer.OrgID, offer.ClientID, offer.TemplateID, offer.Title, items,
		offer.Subtotal, offer.TaxRate, offer.TaxAmount, offer.Total, offer.Status,
	)
	created, err := scanOffer(row)
	if err != nil {
		return domain.Offer{}, mapError("create offer", err)
	}
	return created, nil
}

func (r *PostgresOfferRepo) Update(ctx context.Context, offer domain.Offer) (domain.Offer, error) {
	items, err := json.Marshal(offer.Items)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("encode items: %w", err)
	}

	row := r.db.QueryRow(ctx, `
UPDATE offers
SET title = $3, items = $4, subtotal = $5, tax_rate = $6, tax_amount = $7, total = $8, updated_at = now()
WHERE org_id = $1 AND id = $2
RETURNING `+offerColumns,
		offer.OrgID, offer.ID, offer.Title, items,
		offer.Subtotal, offer.TaxRate, offer.TaxAmount, offer.Total,
	)
	updated, err := scanOffer(row)
	if err != nil {
		return domain.Offer{}, mapError("update offer", err)
	}
	return updated, nil
}

func (r *PostgresOfferRepo) UpdateStatus(ctx context.Context, orgID, offerID int64, from, to domain.OfferStatus) (domain.Offer, error) {
	row := r.db.QueryRow(ctx, `
UPDATE offers
SET status = $4, updated_at = now()
WHERE org_id = $1 AND id = $2 AND status = $3
RETURNING `+offerColumns,
		orgID, offerID, from, to,
	)
	updated, err := scanOffer(row)
	if err != nil {
		return domain.Offer{}, mapError("update offer status", err)
	}
	return updated, nil
}

func (r *PostgresOfferRepo) Delete(ctx context.Context, orgID, offerID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM offers WHERE org_id = $1 AND id = $2`, orgID, offerID)
	if err != nil {
		return mapError("delete offer", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOffer(row rowScanner) (domain.Offer, error) {
	var (
		o     domain.Offer
		items []byte
	)
	if err := row.Scan(&o.ID, &o.OrgID, &o.ClientID, &o.TemplateID, &o.Title, &items,
		&o.Subtotal, &o.TaxRate, &o.TaxAmount, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Offer{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return domain.Offer{}, fmt.Errorf("decode items: %w", err)
		}
	}
	return o, nil
}

// PostgresAllowlistRepo implements AllowlistRepository on pgx.
type PostgresAllowlistRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAllowlistRepo(pool *pgxpool.Pool) *PostgresAllowlistRepo {
	return &PostgresAllowlistRepo{db: pool}
}

const allowlistColumns = `id, org_id, email, created_by, created_at, used_at`

func (r *PostgresAllowlistRepo) List(ctx context.Context, orgID int64) ([]domain.AllowlistEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+allowlistColumns+` FROM admin_allowlist WHERE org_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, mapError("list allowlist", err)
	}
	defer rows.Close()

	var entries []domain.AllowlistEntry
	for rows.Next() {
		var e domain.AllowlistEntry
		if err := rows.Scan(&e.ID, &e.OrgID, &e.Email, &e.CreatedBy, &e.CreatedAt, &e.UsedAt); err != nil {
			return nil, mapError("scan allowlist entry", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresAllowlistRepo) GetByEmail(ctx context.Context, orgID int64, email string) (domain.AllowlistEntry, error) {
	var e domain.AllowlistEntry
	err := r.db.QueryRow(ctx, `SELECT `+allowlistColumns+` FROM admin_allowlist WHERE org_id = $1 AND email = $2`, orgID, email).
		Scan(&e.ID, &e.OrgID, &e.Email, &e.CreatedBy, &e.CreatedAt, &e.UsedAt)
	if err != nil {
		return domain.AllowlistEntry{}, mapError("get allowlist entry", err)
	}
	return e, nil
}

func (r *PostgresAllowlistRepo) Create(ctx context.Context, entry domain.AllowlistEntry) (domain.AllowlistEntry, error) {
	err := r.db.QueryRow(ctx, `
INSERT INTO admin_allowlist (id, org_id, email, created_by)
VALUES ($1, $2, $3, $4)
RETURNING `+allowlistColumns,
		entry.ID, entry.OrgID, entry.Email, entry.CreatedBy,
	).Scan(&entry.ID, &entry.OrgID, &entry.Email, &entry.CreatedBy, &entry.CreatedAt, &entry.UsedAt)
	if err != nil {
		return domain.AllowlistEntry{}, mapError("create allowlist entry", err)
	}
	return entry, nil
}

func (r *PostgresAllowlistRepo) MarkUsed(ctx context.Context, orgID int64, email string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
UPDATE admin_allowlist
SET used_at = now()
WHERE org_id = $1 AND email = $2 AND used_at IS NULL`,
		orgID, email,
	)
	if err != nil {
		return false, mapError("mark allowlist used", err)
	}
	return tag.RowsAffected() == 1, nil
}

// PostgresSessionKeyRepo implements SessionKeyRepository on pgx.
type PostgresSessionKeyRepo struct {
	db *pgxpool.Pool
}

func NewPostgresSessionKeyRepo(pool *pgxpool.Pool) *PostgresSessionKeyRepo {
	return &PostgresSessionKeyRepo{db: pool}
}

const sessionKeyColumns = `id, org_id, kid, secret, algorithm, is_active, created_at, rotated_at`

func (r *PostgresSessionKeyRepo) GetActiveKey(ctx context.Context, orgID int64) (domain.SessionKey, error) {
	var k domain.SessionKey
	err := r.db.QueryRow(ctx, `SELECT `+sessionKeyColumns+` FROM session_keys WHERE org_id = $1 AND is_active ORDER BY created_at DESC LIMIT 1`, orgID).
		Scan(&k.ID, &k.OrgID, &k.KID, &k.Secret, &k.Algorithm, &k.IsActive, &k.CreatedAt, &k.RotatedAt)
	if err != nil {
		return domain.SessionKey{}, mapError("get session key", err)
	}
	return k, nil
}

func (r *PostgresSessionKeyRepo) CreateKey(ctx context.Context, key domain.SessionKey) (domain.SessionKey, error) {
	err := r.db.QueryRow(ctx, `
INSERT INTO session_keys (org_id, kid, secret, algorithm, is_active)
VALUES ($1, $2, $3, $4, true)
RETURNING `+sessionKeyColumns,
		key.OrgID, key.KID, key.Secret, key.Algorithm,
	).Scan(&key.ID, &key.OrgID, &key.KID, &key.Secret, &key.Algorithm, &key.IsActive, &key.CreatedAt, &key.RotatedAt)
	if err != nil {
		return domain.SessionKey{}, mapError("create session key", err)
	}
	return key, nil
}
