package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/wizard"

	"github.com/google/uuid"
)

// --- DTOs ---

type WizardStateResponse struct {
	SessionID   string            `json:"session_id"`
	Step        int               `json:"step"`
	Revision    bool              `json:"revision"`
	ServiceType string            `json:"service_type,omitempty"`
	FormData    map[string]string `json:"form_data"`
	Errors      map[string]string `json:"errors"`
	EditorSeed  string            `json:"editor_seed,omitempty"`
	SavedHTML   string            `json:"saved_html,omitempty"`
	Dirty       bool              `json:"dirty"`
}

type SaveContentRequest struct {
	HTML string          `json:"html" binding:"required"`
	JSON json.RawMessage `json:"json"`
}

type SetFieldRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

var ErrSessionNotFound = errors.New("wizard session not found or expired")

// --- Interface ---

// WizardService drives the three-step proposal authoring flow. All session
// state is in memory; only Submit touches the database.
type WizardService interface {
	Start(ctx context.Context, inquiryID, userID string) (WizardStateResponse, error)
	SelectService(ctx context.Context, sessionID, serviceType string) (WizardStateResponse, error)
	SetField(ctx context.Context, sessionID, name, value string) (WizardStateResponse, error)
	Advance(ctx context.Context, sessionID string) (WizardStateResponse, error)
	Back(ctx context.Context, sessionID string) (WizardStateResponse, error)
	MarkEdited(ctx context.Context, sessionID string) (WizardStateResponse, error)
	SaveContent(ctx context.Context, sessionID string, req SaveContentRequest) (WizardStateResponse, error)
	Submit(ctx context.Context, sessionID string) (ProposalResponse, error)
	Close(sessionID string) error
}

type wizardService struct {
	store        *wizard.Store
	templates    TemplateService
	proposals    ProposalService
	proposalRepo repository.ProposalRepository
	inquiryRepo  repository.InquiryRepository
}

func NewWizardService(
	store *wizard.Store,
	templates TemplateService,
	proposals ProposalService,
	proposalRepo repository.ProposalRepository,
	inquiryRepo repository.InquiryRepository,
) WizardService {
	return &wizardService{
		store:        store,
		templates:    templates,
		proposals:    proposals,
		proposalRepo: proposalRepo,
		inquiryRepo:  inquiryRepo,
	}
}

// --- Implementation ---

// Start opens a wizard session for an inquiry. When the inquiry's active
// proposal is disapproved, the session opens in revision mode: the stored
// document hydrates the form and, if edited content exists, the session lands
// directly on the edit step.
func (s *wizardService) Start(ctx context.Context, inquiryID, userID string) (WizardStateResponse, error) {
	inqID, err := uuid.Parse(inquiryID)
	if err != nil {
		return WizardStateResponse{}, fmt.Errorf("invalid inquiry id: %w", err)
	}
	creatorID := uuid.Nil
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		creatorID = parsed
	}

	inquiry, err := s.inquiryRepo.FindByID(ctx, inqID)
	if err != nil {
		return WizardStateResponse{}, fmt.Errorf("inquiry not found: %w", err)
	}

	var session *wizard.Session
	if inquiry.ProposalID != nil {
		proposal, findErr := s.proposalRepo.FindByID(ctx, *inquiry.ProposalID)
		if findErr == nil && proposal.Status == model.ProposalDisapproved {
			data, dataErr := proposal.Data()
			if dataErr != nil {
				return WizardStateResponse{}, fmt.Errorf("failed to read proposal data: %w", dataErr)
			}
			session = wizard.NewRevision(proposal, data, creatorID)
		}
	}
	if session == nil {
		session = wizard.New(inqID, creatorID)
	}

	s.store.Put(session)
	return s.state(session), nil
}

func (s *wizardService) SelectService(ctx context.Context, sessionID, serviceType string) (WizardStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return WizardStateResponse{}, err
	}

	tpl, err := s.templates.GetByServiceType(ctx, serviceType)
	if err != nil {
		return WizardStateResponse{}, err
	}
	if err := session.SelectService(serviceType, tpl); err != nil {
		return WizardStateResponse{}, err
	}

	// Best-effort write-back of the chosen type onto the owning inquiry;
	// failure is logged, not surfaced, since it does not block the wizard.
	if err := s.inquiryRepo.SetServiceType(ctx, session.InquiryID, serviceType); err != nil {
		log.Printf("failed to write service type back to inquiry %s: %v", session.InquiryID, err)
	}

	return s.state(session), nil
}

func (s *wizardService) SetField(_ context.Context, sessionID, name, value string) (WizardStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return WizardStateResponse{}, err
	}
	session.SetField(name, value)
	return s.state(session), nil
}

func (s *wizardService) Advance(_ context.Context, sessionID string) (WizardStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return WizardStateResponse{}, err
	}
	if err := session.Advance(); err != nil {
		return s.state(session), err
	}
	return s.state(session), nil
}

func (s *wizardService) Back(_ context.Context, sessionID string) (WizardStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return WizardStateResponse{}, err
	}
	if err := session.Back(); err != nil {
		return s.state(session), err
	}
	return s.state(session), nil
}

func (s *wizardService) MarkEdited(_ context.Context, sessionID string) (WizardStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return WizardStateResponse{}, err
	}
	if err := session.MarkEdited(); err != nil {
		return s.state(session), err
	}
	return s.state(session), nil
}

func (s *wizardService) SaveContent(_ context.Context, sessionID string, req SaveContentRequest) (WizardStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return WizardStateResponse{}, err
	}
	if err := session.SaveContent(req.HTML, req.JSON); err != nil {
		return s.state(session), err
	}
	return s.state(session), nil
}

// Submit runs the buffer gate, then creates the proposal, or revises the
// existing one when the session opened in revision mode. The session is
// discarded on success; on failure it stays open so the user can retry.
func (s *wizardService) Submit(ctx context.Context, sessionID string) (ProposalResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return ProposalResponse{}, err
	}

	if err := session.BeginSubmit(); err != nil {
		return ProposalResponse{}, err
	}
	defer session.EndSubmit()

	req := SubmitProposalRequest{
		InquiryID: session.InquiryID.String(),
		Data:      session.BuildData(),
	}
	if tplID := session.TemplateID(); tplID != nil {
		req.TemplateID = tplID.String()
	}
	userID := ""
	if session.CreatedBy != uuid.Nil {
		userID = session.CreatedBy.String()
	}

	var resp ProposalResponse
	if session.Revision && session.ProposalID != nil {
		resp, err = s.proposals.Revise(ctx, session.ProposalID.String(), req, userID)
	} else {
		resp, err = s.proposals.Create(ctx, req, userID)
	}
	if err != nil {
		return ProposalResponse{}, err
	}

	s.store.Remove(session.ID)
	return resp, nil
}

// Close discards a session and all its ephemeral state.
func (s *wizardService) Close(sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	s.store.Remove(id)
	return nil
}

// --- Helpers ---

func (s *wizardService) session(sessionID string) (*wizard.Session, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	session := s.store.Get(id)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *wizardService) state(session *wizard.Session) WizardStateResponse {
	saved, dirty := session.Buffer()
	return WizardStateResponse{
		SessionID:   session.ID.String(),
		Step:        int(session.Step()),
		Revision:    session.Revision,
		ServiceType: session.ServiceType(),
		FormData:    session.FormData(),
		Errors:      session.Errors(),
		EditorSeed:  session.EditorSeed(),
		SavedHTML:   saved.HTML,
		Dirty:       dirty,
	}
}
