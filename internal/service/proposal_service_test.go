package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeProposalRepo struct {
	proposals map[uuid.UUID]*model.Proposal
	active    map[uuid.UUID]*model.Proposal // keyed by inquiry id
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{
		proposals: map[uuid.UUID]*model.Proposal{},
		active:    map[uuid.UUID]*model.Proposal{},
	}
}

func (r *fakeProposalRepo) Create(_ context.Context, p *model.Proposal) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	r.proposals[p.ID] = &stored
	r.active[p.InquiryID] = &stored
	return nil
}

func (r *fakeProposalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proposal, error) {
	p, ok := r.proposals[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProposalRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProposalRepo) FindActiveByInquiry(_ context.Context, inquiryID uuid.UUID) (*model.Proposal, error) {
	p, ok := r.active[inquiryID]
	if !ok || p.Status == model.ProposalCancelled {
		return nil, errors.New("record not found")
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProposalRepo) List(_ context.Context, _ repository.ProposalFilter) ([]model.Proposal, int64, error) {
	return nil, 0, nil
}

func (r *fakeProposalRepo) Update(_ context.Context, p *model.Proposal) error {
	stored := *p
	r.proposals[p.ID] = &stored
	r.active[p.InquiryID] = &stored
	return nil
}

type fakeInquiryRepo struct {
	inquiries map[uuid.UUID]*model.Inquiry
}

func newFakeInquiryRepo() *fakeInquiryRepo {
	return &fakeInquiryRepo{inquiries: map[uuid.UUID]*model.Inquiry{}}
}

func (r *fakeInquiryRepo) Create(_ context.Context, i *model.Inquiry) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.inquiries[i.ID] = i
	return nil
}

func (r *fakeInquiryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Inquiry, error) {
	i, ok := r.inquiries[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return i, nil
}

func (r *fakeInquiryRepo) List(_ context.Context, _, _ string, _ *uuid.UUID, _, _ int) ([]model.Inquiry, int64, error) {
	return nil, 0, nil
}

func (r *fakeInquiryRepo) Update(_ context.Context, i *model.Inquiry) error {
	r.inquiries[i.ID] = i
	return nil
}

func (r *fakeInquiryRepo) SetServiceType(_ context.Context, id uuid.UUID, serviceType string) error {
	if i, ok := r.inquiries[id]; ok {
		i.ServiceType = serviceType
	}
	return nil
}

func (r *fakeInquiryRepo) SetProposalID(_ context.Context, id uuid.UUID, proposalID *uuid.UUID) error {
	if i, ok := r.inquiries[id]; ok {
		i.ProposalID = proposalID
	}
	return nil
}

func (r *fakeInquiryRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendProposal(_ context.Context, to, _, proposalID string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"/"+proposalID)
	return nil
}

// --- Fixture ---

type proposalFixture struct {
	svc       ProposalService
	proposals *fakeProposalRepo
	inquiries *fakeInquiryRepo
	audits    *fakeAuditRepo
	tx        *fakeTxManager
	mail      *fakeMailer
}

func newProposalFixture() *proposalFixture {
	f := &proposalFixture{
		proposals: newFakeProposalRepo(),
		inquiries: newFakeInquiryRepo(),
		audits:    &fakeAuditRepo{},
		tx:        &fakeTxManager{},
		mail:      &fakeMailer{},
	}
	f.svc = NewProposalService(f.proposals, f.inquiries, f.audits, f.tx, f.mail, nil)
	return f
}

func (f *proposalFixture) seedInquiry(t *testing.T) *model.Inquiry {
	t.Helper()
	inquiry := &model.Inquiry{
		ContactName:  "Jane Cruz",
		ContactEmail: "jane@acme.example",
		CompanyName:  "Acme Disposal",
	}
	require.NoError(t, f.inquiries.Create(context.Background(), inquiry))
	return inquiry
}

func (f *proposalFixture) seedProposal(t *testing.T, status string) *model.Proposal {
	t.Helper()
	inquiry := f.seedInquiry(t)
	proposal := &model.Proposal{InquiryID: inquiry.ID, Status: status}
	require.NoError(t, proposal.SetData(model.ProposalData{
		ClientName:        "Jane Cruz",
		ClientEmail:       "jane@acme.example",
		ServiceType:       model.ServiceFixedMonthly,
		EditedHTMLContent: "<p>offer</p>",
	}))
	require.NoError(t, f.proposals.Create(context.Background(), proposal))
	return proposal
}

func submitRequest(inquiryID uuid.UUID) SubmitProposalRequest {
	return SubmitProposalRequest{
		InquiryID: inquiryID.String(),
		Data: model.ProposalData{
			ClientName:        "Jane Cruz",
			ClientEmail:       "jane@acme.example",
			ServiceType:       model.ServiceFixedMonthly,
			EditedHTMLContent: "<p>offer</p>",
		},
	}
}

// --- Tests ---

func TestCreateRequiresSavedContent(t *testing.T) {
	f := newProposalFixture()
	inquiry := f.seedInquiry(t)

	req := submitRequest(inquiry.ID)
	req.Data.EditedHTMLContent = ""

	_, err := f.svc.Create(context.Background(), req, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content is empty")
	assert.Zero(t, f.tx.calls, "empty content should never reach the database")
}

func TestCreateRejectsSecondActiveProposal(t *testing.T) {
	f := newProposalFixture()
	inquiry := f.seedInquiry(t)

	first, err := f.svc.Create(context.Background(), submitRequest(inquiry.ID), "")
	require.NoError(t, err)
	assert.Equal(t, model.ProposalPending, first.Status)
	require.NotNil(t, f.inquiries.inquiries[inquiry.ID].ProposalID)

	_, err = f.svc.Create(context.Background(), submitRequest(inquiry.ID), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active proposal")
}

func TestCreateAllowsNewProposalAfterCancel(t *testing.T) {
	f := newProposalFixture()
	inquiry := f.seedInquiry(t)

	first, err := f.svc.Create(context.Background(), submitRequest(inquiry.ID), "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), first.ID, "")
	require.NoError(t, err)
	assert.Nil(t, f.inquiries.inquiries[inquiry.ID].ProposalID, "cancel frees the inquiry")

	_, err = f.svc.Create(context.Background(), submitRequest(inquiry.ID), "")
	assert.NoError(t, err)
}

func TestDisapproveRequiresReason(t *testing.T) {
	f := newProposalFixture()
	proposal := f.seedProposal(t, model.ProposalPending)

	_, err := f.svc.Disapprove(context.Background(), proposal.ID.String(), "  ", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason")
	assert.Zero(t, f.tx.calls)
}

func TestApproveOnlyFromPending(t *testing.T) {
	f := newProposalFixture()
	proposal := f.seedProposal(t, model.ProposalSent)

	_, err := f.svc.Approve(context.Background(), proposal.ID.String(), "", "")
	require.Error(t, err)
	assert.Equal(t, model.ProposalSent, f.proposals.proposals[proposal.ID].Status)
}

func TestSendOnlyFromApproved(t *testing.T) {
	f := newProposalFixture()
	proposal := f.seedProposal(t, model.ProposalPending)

	_, err := f.svc.Send(context.Background(), proposal.ID.String(), "")
	require.Error(t, err)
	assert.Empty(t, f.mail.sent)
}

func TestSendAbortsWhenMailFails(t *testing.T) {
	f := newProposalFixture()
	f.mail.err = errors.New("mail service unreachable")
	proposal := f.seedProposal(t, model.ProposalApproved)

	_, err := f.svc.Send(context.Background(), proposal.ID.String(), "")
	require.Error(t, err)
	assert.Equal(t, model.ProposalApproved, f.proposals.proposals[proposal.ID].Status,
		"status must not advance when dispatch fails")
}

func TestSendDispatchesAndStampsSentAt(t *testing.T) {
	f := newProposalFixture()
	proposal := f.seedProposal(t, model.ProposalApproved)

	resp, err := f.svc.Send(context.Background(), proposal.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, model.ProposalSent, resp.Status)
	assert.NotNil(t, resp.SentAt)
	require.Len(t, f.mail.sent, 1)
	assert.Contains(t, f.mail.sent[0], "jane@acme.example")
}

func TestReviseReusesIdentityAndClearsReason(t *testing.T) {
	f := newProposalFixture()
	proposal := f.seedProposal(t, model.ProposalDisapproved)
	f.proposals.proposals[proposal.ID].RejectionReason = "quote too high"

	req := submitRequest(proposal.InquiryID)
	req.Data.EditedHTMLContent = "<p>revised offer</p>"

	resp, err := f.svc.Revise(context.Background(), proposal.ID.String(), req, "")
	require.NoError(t, err)
	assert.Equal(t, proposal.ID.String(), resp.ID)
	assert.Equal(t, model.ProposalPending, resp.Status)
	assert.Empty(t, resp.RejectionReason)
	assert.Equal(t, "<p>revised offer</p>", resp.Data.EditedHTMLContent)
}

func TestReviseOnlyFromDisapproved(t *testing.T) {
	f := newProposalFixture()
	proposal := f.seedProposal(t, model.ProposalApproved)

	_, err := f.svc.Revise(context.Background(), proposal.ID.String(), submitRequest(proposal.InquiryID), "")
	require.Error(t, err)
}

func TestClientDecisionOnlyFromSent(t *testing.T) {
	f := newProposalFixture()

	sent := f.seedProposal(t, model.ProposalSent)
	resp, err := f.svc.RecordClientDecision(context.Background(), sent.ID.String(), true)
	require.NoError(t, err)
	assert.Equal(t, model.ProposalAccepted, resp.Status)

	pending := f.seedProposal(t, model.ProposalPending)
	_, err = f.svc.RecordClientDecision(context.Background(), pending.ID.String(), false)
	require.Error(t, err)
}

func TestMutationsAreAudited(t *testing.T) {
	f := newProposalFixture()
	inquiry := f.seedInquiry(t)

	created, err := f.svc.Create(context.Background(), submitRequest(inquiry.ID), "")
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), created.ID, "looks good", "")
	require.NoError(t, err)

	require.Len(t, f.audits.entries, 2)
	assert.Equal(t, model.ActionCreateProposal, f.audits.entries[0].Action)
	assert.Equal(t, model.ActionApproveProposal, f.audits.entries[1].Action)
}
