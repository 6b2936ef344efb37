// Package mailer delegates proposal delivery to the external mail service.
// Sending the client email (with the PDF attached) happens entirely on that
// side; this package only dispatches the request.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Mailer dispatches a proposal email to the client.
type Mailer interface {
	SendProposal(ctx context.Context, to, clientName, proposalID string) error
}

type httpMailer struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTP creates a mailer posting to the mail service at baseURL.
func NewHTTP(baseURL string) Mailer {
	return &httpMailer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type sendRequest struct {
	To         string `json:"to"`
	ClientName string `json:"client_name"`
	ProposalID string `json:"proposal_id"`
}

func (m *httpMailer) SendProposal(ctx context.Context, to, clientName, proposalID string) error {
	body, err := json.Marshal(sendRequest{To: to, ClientName: clientName, ProposalID: proposalID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/send-proposal", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail service returned status %d", resp.StatusCode)
	}
	return nil
}

type nopMailer struct{}

// NewNop returns a mailer that only logs, for environments without a mail
// service configured.
func NewNop() Mailer {
	return nopMailer{}
}

func (nopMailer) SendProposal(_ context.Context, to, _, proposalID string) error {
	log.Printf("mailer not configured; skipping proposal email to %s (proposal %s)", to, proposalID)
	return nil
}
