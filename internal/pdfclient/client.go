// Package pdfclient talks to the external document-rendering service. The CRM
// never renders PDFs itself: a durable artifact lives behind proposal.pdf_url,
// and anything without one gets a just-in-time preview from the render
// service, returned base64-encoded.
package pdfclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrPreviewInFlight is returned when a preview for the same proposal is
// already being generated; the caller should treat it as a no-op.
var ErrPreviewInFlight = errors.New("a preview for this proposal is already being generated")

// Client fetches stored PDFs and requests just-in-time previews.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu       sync.Mutex
	inFlight map[string]bool // proposal id -> preview in progress
}

// New creates a client for the render service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		inFlight:   make(map[string]bool),
	}
}

// Fetch downloads a durable PDF artifact from its stored URL.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid pdf url: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

type previewRequest struct {
	HTML string `json:"html"`
}

type previewResponse struct {
	PDFBase64 string `json:"pdf_base64"`
}

// RenderPreview asks the render service for a one-off preview of the given
// HTML and returns the base64-encoded document. Requests are serialized per
// proposal: a second call while one is in flight returns ErrPreviewInFlight.
func (c *Client) RenderPreview(ctx context.Context, proposalID, html string) (string, error) {
	c.mu.Lock()
	if c.inFlight[proposalID] {
		c.mu.Unlock()
		return "", ErrPreviewInFlight
	}
	c.inFlight[proposalID] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, proposalID)
		c.mu.Unlock()
	}()

	body, err := json.Marshal(previewRequest{HTML: html})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	var result previewResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("invalid render service response: %w", err)
	}
	if result.PDFBase64 == "" {
		return "", errors.New("render service returned an empty document")
	}

	return result.PDFBase64, nil
}
