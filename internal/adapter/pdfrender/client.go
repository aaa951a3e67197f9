// Package pdfrender calls the external PDF rendering service. The core hands
// it already-authorized, already-tenant-scoped data and has no opinion on
// layout.
package pdfrender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// Input is the payload handed to the renderer.
type Input struct {
	Client   domain.Client    `json:"client"`
	Offer    domain.Offer     `json:"offer"`
	Template *domain.Template `json:"template,omitempty"`
}

// Renderer produces PDF bytes for an offer.
type Renderer interface {
	Render(ctx context.Context, input Input) ([]byte, error)
}

// HTTPRenderer is the default implementation, POSTing to a render endpoint.
type HTTPRenderer struct {
	endpoint   string
	httpClient *http.Client
}

var _ Renderer = (*HTTPRenderer)(nil)

// NewHTTPRenderer constructs the default renderer client.
func NewHTTPRenderer(endpoint string, client *http.Client) *HTTPRenderer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPRenderer{endpoint: endpoint, httpClient: client}
}

// Render posts the offer payload and returns the PDF bytes.
func (r *HTTPRenderer) Render(ctx context.Context, input Input) ([]byte, error) {
	if r.endpoint == "" {
		return nil, fmt.Errorf("pdf render endpoint not configured")
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal render input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("render failed: status=%d", resp.StatusCode)
	}

	return body, nil
}
