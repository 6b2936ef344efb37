// Package wizard holds the ephemeral state of a proposal-authoring session:
// the three-step flow (service selection → client info → edit & submit), the
// live validation error map, and the editor buffer discipline. Sessions are
// pure in-memory state; persistence happens only when a submit goes through
// the proposal service.
package wizard

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/templating"
	"backend/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Step identifies a wizard step.
type Step int

const (
	StepServiceSelection Step = 1
	StepClientInfo       Step = 2
	StepEditSubmit       Step = 3
)

var (
	ErrWrongStep        = errors.New("operation not allowed on the current step")
	ErrTemplateNotSet   = errors.New("no template loaded; select a service type first")
	ErrFieldsIncomplete = errors.New("required client fields are missing or invalid")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
)

// Session is one wizard instance. All methods are safe for concurrent use;
// closing the session simply discards it, nothing partial is persisted.
type Session struct {
	ID        uuid.UUID
	InquiryID uuid.UUID
	CreatedBy uuid.UUID

	// Revision mode reuses an existing disapproved proposal's identity.
	Revision   bool
	ProposalID *uuid.UUID

	mu          sync.Mutex
	step        Step
	serviceType string
	template    *model.ProposalTemplate
	formData    map[string]string
	errors      map[string]string
	seedHTML    string // rendered template that seeded the editor
	buffer      EditBuffer
	submitting  bool
	touchedAt   time.Time
}

// New opens a fresh session at the service-selection step.
func New(inquiryID, createdBy uuid.UUID) *Session {
	return &Session{
		ID:        uuid.New(),
		InquiryID: inquiryID,
		CreatedBy: createdBy,
		step:      StepServiceSelection,
		formData:  make(map[string]string),
		errors:    make(map[string]string),
		touchedAt: time.Now(),
	}
}

// NewRevision opens a session for resubmitting a disapproved proposal. The
// prior submission already satisfied steps 1 and 2, so the session hydrates
// the form from the stored document and, when edited content exists, lands
// directly on the edit step with a clean buffer.
func NewRevision(proposal *model.Proposal, data model.ProposalData, createdBy uuid.UUID) *Session {
	s := New(proposal.InquiryID, createdBy)
	s.Revision = true
	id := proposal.ID
	s.ProposalID = &id
	s.serviceType = data.ServiceType
	s.formData = FieldsFromData(data)

	if data.EditedHTMLContent != "" {
		s.buffer.Seed(data.EditedHTMLContent, data.EditedJSONContent)
		s.seedHTML = data.EditedHTMLContent
		s.step = StepEditSubmit
	}
	return s
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// ServiceType returns the selected service type.
func (s *Session) ServiceType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serviceType
}

// SelectService records the chosen service type and its loaded template.
func (s *Session) SelectService(serviceType string, tpl *model.ProposalTemplate) error {
	if !model.IsValidServiceType(serviceType) {
		return errors.New("unknown service type: " + serviceType)
	}
	if tpl == nil || tpl.HTMLTemplate == "" {
		return ErrTemplateNotSet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepServiceSelection {
		return ErrWrongStep
	}
	s.serviceType = serviceType
	s.template = tpl
	s.formData[validation.FieldProposalDate] = firstNonEmpty(
		s.formData[validation.FieldProposalDate], time.Now().Format("2006-01-02"))
	s.touch()
	return nil
}

// SetField updates one form field, re-validating only the changed field and
// merging the result into the error map.
func (s *Session) SetField(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formData[name] = value
	if err := validation.ValidateField(name, value); err != nil {
		s.errors[name] = err.Error()
	} else {
		delete(s.errors, name)
	}
	s.touch()
}

// FormData returns a copy of the current form fields.
func (s *Session) FormData() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.formData))
	for k, v := range s.formData {
		out[k] = v
	}
	return out
}

// Errors returns a copy of the current field error map.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Advance moves the session one step forward. Step 1→2 requires a selected
// service with its template loaded; step 2→3 additionally requires every
// required field to validate, and seeds the editor with the rendered template.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.step {
	case StepServiceSelection:
		if s.template == nil {
			return ErrTemplateNotSet
		}
		s.step = StepClientInfo
	case StepClientInfo:
		if s.template == nil {
			return ErrTemplateNotSet
		}
		if !validation.RequiredComplete(s.formData) {
			s.errors = validation.ValidateAll(s.formData)
			return ErrFieldsIncomplete
		}
		s.seedHTML = templating.Render(s.template.HTMLTemplate, s.renderFields())
		s.step = StepEditSubmit
	default:
		return ErrWrongStep
	}
	s.touch()
	return nil
}

// Back moves the session one step backwards. Revision sessions opened on the
// edit step cannot go back; steps 1 and 2 were never populated here.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step == StepServiceSelection || (s.Revision && s.step == StepEditSubmit) {
		return ErrWrongStep
	}
	s.step--
	s.touch()
	return nil
}

// EditorSeed returns the HTML that initializes the editor on step 3.
func (s *Session) EditorSeed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedHTML
}

// MarkEdited flags the editor content as diverged from the last save.
func (s *Session) MarkEdited() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepEditSubmit {
		return ErrWrongStep
	}
	s.buffer.MarkEdited()
	s.touch()
	return nil
}

// SaveContent commits the current editor content as the clean checkpoint.
func (s *Session) SaveContent(html string, structured json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepEditSubmit {
		return ErrWrongStep
	}
	s.buffer.Save(html, structured)
	s.touch()
	return nil
}

// Buffer returns the current buffer state (saved snapshot + dirty flag).
func (s *Session) Buffer() (SavedContent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Saved(), s.buffer.Dirty()
}

// BeginSubmit checks the submit gate and reserves the in-flight slot. Callers
// must pair it with EndSubmit. The gate is synchronous: when it fails, no
// backend call may be issued.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepEditSubmit {
		return ErrWrongStep
	}
	if s.submitting {
		return ErrSubmitInFlight
	}
	if err := s.buffer.CanSubmit(); err != nil {
		return err
	}
	s.submitting = true
	s.touch()
	return nil
}

// EndSubmit releases the in-flight slot after the backend call resolves.
func (s *Session) EndSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// BuildData assembles the document blob for create/revise from the form and
// the saved buffer.
func (s *Session) BuildData() model.ProposalData {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.buffer.Saved()
	amount, err := decimal.NewFromString(s.formData["quotedAmount"])
	if err != nil {
		amount = decimal.Zero
	}
	return model.ProposalData{
		ClientName:        s.formData[validation.FieldClientName],
		ClientEmail:       s.formData[validation.FieldClientEmail],
		ClientPhone:       s.formData[validation.FieldClientPhone],
		ClientCompany:     s.formData[validation.FieldClientCompany],
		ClientPosition:    s.formData["clientPosition"],
		ClientAddress:     s.formData[validation.FieldClientAddress],
		ProposalDate:      s.formData[validation.FieldProposalDate],
		ServiceType:       s.serviceType,
		Notes:             s.formData["notes"],
		QuotedAmount:      amount,
		EditedHTMLContent: saved.HTML,
		EditedJSONContent: saved.JSON,
	}
}

// TemplateID returns the loaded template's id, or nil before selection and in
// revision sessions (the content has diverged from any template by then).
func (s *Session) TemplateID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.template == nil {
		return nil
	}
	id := s.template.ID
	return &id
}

// TouchedAt reports the last activity time, used by the store's TTL sweep.
func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func (s *Session) touch() {
	s.touchedAt = time.Now()
}

// renderFields maps the form onto template placeholder keys. Empty values are
// kept (they behave as falsy in conditionals). Caller holds the lock.
func (s *Session) renderFields() map[string]string {
	fields := make(map[string]string, len(s.formData)+1)
	for k, v := range s.formData {
		fields[k] = v
	}
	fields["serviceType"] = s.serviceType
	return fields
}

// FieldsFromData rebuilds a wizard form from a stored proposal document,
// used to hydrate revision sessions.
func FieldsFromData(d model.ProposalData) map[string]string {
	fields := map[string]string{
		validation.FieldClientName:    d.ClientName,
		validation.FieldClientEmail:   d.ClientEmail,
		validation.FieldClientPhone:   d.ClientPhone,
		validation.FieldClientCompany: d.ClientCompany,
		"clientPosition":              d.ClientPosition,
		validation.FieldClientAddress: d.ClientAddress,
		validation.FieldProposalDate:  d.ProposalDate,
		"notes":                       d.Notes,
	}
	if !d.QuotedAmount.IsZero() {
		fields["quotedAmount"] = d.QuotedAmount.String()
	}
	return fields
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
