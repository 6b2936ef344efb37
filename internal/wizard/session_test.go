package wizard

import (
	"encoding/json"
	"testing"

	"backend/internal/model"
	"backend/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate() *model.ProposalTemplate {
	return &model.ProposalTemplate{
		ID:           uuid.New(),
		Name:         "Fixed monthly",
		ServiceType:  model.ServiceFixedMonthly,
		HTMLTemplate: "Dear {{clientName}},{{#if clientCompany}} from {{clientCompany}}{{/if}}.",
	}
}

func fillValidForm(s *Session) {
	s.SetField(validation.FieldClientName, "Jane Cruz")
	s.SetField(validation.FieldClientEmail, "jane@acme.com")
	s.SetField(validation.FieldClientPhone, "1234567")
	s.SetField(validation.FieldClientCompany, "Acme")
	s.SetField(validation.FieldClientAddress, "1 Main Street")
	s.SetField(validation.FieldProposalDate, "2026-08-30")
}

func TestSessionLinearFlow(t *testing.T) {
	s := New(uuid.New(), uuid.New())
	assert.Equal(t, StepServiceSelection, s.Step())

	// Cannot advance before a service is chosen.
	assert.ErrorIs(t, s.Advance(), ErrTemplateNotSet)

	require.NoError(t, s.SelectService(model.ServiceFixedMonthly, testTemplate()))
	require.NoError(t, s.Advance())
	assert.Equal(t, StepClientInfo, s.Step())

	// Step-2 gate: required fields must validate.
	assert.ErrorIs(t, s.Advance(), ErrFieldsIncomplete)
	assert.NotEmpty(t, s.Errors())

	fillValidForm(s)
	require.NoError(t, s.Advance())
	assert.Equal(t, StepEditSubmit, s.Step())
	assert.Equal(t, "Dear Jane Cruz, from Acme.", s.EditorSeed())
}

func TestSessionRejectsUnknownServiceType(t *testing.T) {
	s := New(uuid.New(), uuid.New())
	assert.Error(t, s.SelectService("WEEKLY_MAGIC", testTemplate()))
	assert.Error(t, s.SelectService(model.ServiceFixedMonthly, nil))
}

func TestSessionFieldValidationMergesErrorMap(t *testing.T) {
	s := New(uuid.New(), uuid.New())
	s.SetField(validation.FieldClientPhone, "123456")
	assert.Contains(t, s.Errors(), validation.FieldClientPhone)

	s.SetField(validation.FieldClientPhone, "1234567")
	assert.NotContains(t, s.Errors(), validation.FieldClientPhone)
}

func TestSessionSubmitGate(t *testing.T) {
	s := New(uuid.New(), uuid.New())
	require.NoError(t, s.SelectService(model.ServiceFixedMonthly, testTemplate()))
	require.NoError(t, s.Advance())
	fillValidForm(s)
	require.NoError(t, s.Advance())

	// Nothing saved yet: blocked.
	assert.Error(t, s.BeginSubmit())

	require.NoError(t, s.SaveContent("<p>offer</p>", nil))
	require.NoError(t, s.MarkEdited())

	// Dirty buffer: blocked, even though saved HTML is non-empty.
	assert.Error(t, s.BeginSubmit())

	require.NoError(t, s.SaveContent("<p>offer v2</p>", nil))
	require.NoError(t, s.BeginSubmit())

	// Second submit while one is in flight is refused.
	assert.ErrorIs(t, s.BeginSubmit(), ErrSubmitInFlight)
	s.EndSubmit()
	require.NoError(t, s.BeginSubmit())
	s.EndSubmit()
}

func TestRevisionSessionLandsOnEditStep(t *testing.T) {
	proposal := &model.Proposal{ID: uuid.New(), InquiryID: uuid.New(), Status: model.ProposalDisapproved}
	data := model.ProposalData{
		ClientName:        "Jane Cruz",
		ClientEmail:       "jane@acme.com",
		ClientPhone:       "1234567",
		ClientCompany:     "Acme",
		ClientAddress:     "1 Main Street",
		ProposalDate:      "2026-08-30",
		ServiceType:       model.ServiceFixedMonthly,
		EditedHTMLContent: "<p>Old offer</p>",
	}

	s := NewRevision(proposal, data, uuid.New())

	assert.True(t, s.Revision)
	require.NotNil(t, s.ProposalID)
	assert.Equal(t, proposal.ID, *s.ProposalID)
	assert.Equal(t, StepEditSubmit, s.Step())
	assert.Equal(t, "<p>Old offer</p>", s.EditorSeed())

	saved, dirty := s.Buffer()
	assert.Equal(t, "<p>Old offer</p>", saved.HTML)
	assert.False(t, dirty, "pre-loaded revision content starts clean")

	// Steps 1-2 were satisfied by the prior submission; going back is closed.
	assert.ErrorIs(t, s.Back(), ErrWrongStep)

	// A revision with clean pre-loaded content is immediately submittable.
	require.NoError(t, s.BeginSubmit())
	s.EndSubmit()
}

func TestRevisionWithoutContentStartsAtStepOne(t *testing.T) {
	proposal := &model.Proposal{ID: uuid.New(), InquiryID: uuid.New(), Status: model.ProposalDisapproved}
	s := NewRevision(proposal, model.ProposalData{ServiceType: model.ServiceFixedMonthly}, uuid.New())
	assert.Equal(t, StepServiceSelection, s.Step())
}

func TestSessionBuildData(t *testing.T) {
	s := New(uuid.New(), uuid.New())
	require.NoError(t, s.SelectService(model.ServiceFixedMonthly, testTemplate()))
	require.NoError(t, s.Advance())
	fillValidForm(s)
	s.SetField("notes", "quarterly pickup review")
	s.SetField("quotedAmount", "1250.50")
	require.NoError(t, s.Advance())
	require.NoError(t, s.SaveContent("<p>offer</p>", json.RawMessage(`{"type":"doc"}`)))

	data := s.BuildData()
	assert.Equal(t, "Jane Cruz", data.ClientName)
	assert.Equal(t, model.ServiceFixedMonthly, data.ServiceType)
	assert.Equal(t, "<p>offer</p>", data.EditedHTMLContent)
	assert.Equal(t, "1250.5", data.QuotedAmount.String())
	assert.Equal(t, "quarterly pickup review", data.Notes)
}

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()
	s := New(uuid.New(), uuid.New())
	st.Put(s)

	require.NotNil(t, st.Get(s.ID))
	st.Remove(s.ID)
	assert.Nil(t, st.Get(s.ID), "closing a wizard discards all session state")
}
