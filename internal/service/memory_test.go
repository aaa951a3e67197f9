package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-offers/internal/adapter/pdfrender"
	"github.com/smallbiznis/valora-offers/internal/domain"
)

func newTestNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

type memoryClientRepo struct {
	mu      sync.Mutex
	clients map[int64]domain.Client
	err     error
}

func newMemoryClientRepo() *memoryClientRepo {
	return &memoryClientRepo{clients: make(map[int64]domain.Client)}
}

func (r *memoryClientRepo) List(_ context.Context, orgID int64) ([]domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Client
	for _, c := range r.clients {
		if c.OrgID == orgID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryClientRepo) GetByID(_ context.Context, orgID, clientID int64) (domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Client{}, r.err
	}
	c, ok := r.clients[clientID]
	if !ok || c.OrgID != orgID {
		return domain.Client{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *memoryClientRepo) Create(_ context.Context, client domain.Client) (domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Client{}, r.err
	}
	r.clients[client.ID] = client
	return client, nil
}

func (r *memoryClientRepo) Update(_ context.Context, client domain.Client) (domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.clients[client.ID]
	if !ok || existing.OrgID != client.OrgID {
		return domain.Client{}, domain.ErrNotFound
	}
	r.clients[client.ID] = client
	return client, nil
}

func (r *memoryClientRepo) Delete(_ context.Context, orgID, clientID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[clientID]
	if !ok || c.OrgID != orgID {
		return domain.ErrNotFound
	}
	delete(r.clients, clientID)
	return nil
}

type memoryTemplateRepo struct {
	mu        sync.Mutex
	templates map[int64]domain.Template
}

func newMemoryTemplateRepo() *memoryTemplateRepo {
	return &memoryTemplateRepo{templates: make(map[int64]domain.Template)}
}

func (r *memoryTemplateRepo) List(_ context.Context, orgID int64) ([]domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Template
	for _, tpl := range r.templates {
		if tpl.OrgID == orgID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (r *memoryTemplateRepo) GetByID(_ context.Context, orgID, templateID int64) (domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.templates[templateID]
	if !ok || tpl.OrgID != orgID {
		return domain.Template{}, domain.ErrNotFound
	}
	return tpl, nil
}

func (r *memoryTemplateRepo) Create(_ context.Context, template domain.Template) (domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tpl := range r.templates {
		if tpl.OrgID == template.OrgID && tpl.Slug == template.Slug {
			return domain.Template{}, domain.ErrSlugConflict
		}
	}
	r.templates[template.ID] = template
	return template, nil
}

func (r *memoryTemplateRepo) Update(_ context.Context, template domain.Template) (domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.templates[template.ID]
	if !ok || existing.OrgID != template.OrgID {
		return domain.Template{}, domain.ErrNotFound
	}
	for id, tpl := range r.templates {
		if id != template.ID && tpl.OrgID == template.OrgID && tpl.Slug == template.Slug {
			return domain.Template{}, domain.ErrSlugConflict
		}
	}
	r.templates[template.ID] = template
	return template, nil
}

func (r *memoryTemplateRepo) Delete(_ context.Context, orgID, templateID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.templates[templateID]
	if !ok || tpl.OrgID != orgID {
		return domain.ErrNotFound
	}
	delete(r.templates, templateID)
	return nil
}

type memoryOfferRepo struct {
	mu     sync.Mutex
	offers map[int64]domain.Offer
}

func newMemoryOfferRepo() *memoryOfferRepo {
	return &memoryOfferRepo{offers: make(map[int64]domain.Offer)}
}

func (r *memoryOfferRepo) List(_ context.Context, orgID int64) ([]domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Offer
	for _, o := range r.offers {
		if o.OrgID == orgID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memoryOfferRepo) GetByID(_ context.Context, orgID, offerID int64) (domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[offerID]
	if !ok || o.OrgID != orgID {
		return domain.Offer{}, domain.ErrNotFound
	}
	return o, nil
}

func (r *memoryOfferRepo) Create(_ context.Context, offer domain.Offer) (domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[offer.ID] = offer
	return offer, nil
}

func (r *memoryOfferRepo) Update(_ context.Context, offer domain.Offer) (domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.offers[offer.ID]
	if !ok || existing.OrgID != offer.OrgID {
		return domain.Offer{}, domain.ErrNotFound
	}
	r.offers[offer.ID] = offer
	return offer, nil
}

func (r *memoryOfferRepo) UpdateStatus(_ context.Context, orgID, offerID int64, from, to domain.OfferStatus) (domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[offerID]
	if !ok || o.OrgID != orgID || o.Status != from {
		return domain.Offer{}, domain.ErrNotFound
	}
	o.Status = to
	r.offers[offerID] = o
	return o, nil
}

func (r *memoryOfferRepo) Delete(_ context.Context, orgID, offerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[offerID]
	if !ok || o.OrgID != orgID {
		return domain.ErrNotFound
	}
	delete(r.offers, offerID)
	return nil
}

type stubRenderer struct {
	got  pdfrender.Input
	out  []byte
	err  error
	hits int
}

func (r *stubRenderer) Render(_ context.Context, input pdfrender.Input) ([]byte, error) {
	r.got = input
	r.hits++
	return r.out, r.err
}
