package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalTransitions(t *testing.T) {
	assert.True(t, CanTransition(ProposalPending, ProposalApproved))
	assert.True(t, CanTransition(ProposalPending, ProposalDisapproved))
	assert.True(t, CanTransition(ProposalPending, ProposalCancelled))
	assert.True(t, CanTransition(ProposalApproved, ProposalSent))
	assert.True(t, CanTransition(ProposalApproved, ProposalCancelled))
	assert.True(t, CanTransition(ProposalDisapproved, ProposalPending))
	assert.True(t, CanTransition(ProposalSent, ProposalAccepted))
	assert.True(t, CanTransition(ProposalSent, ProposalRejected))
}

func TestIllegalTransitions(t *testing.T) {
	// Sending requires approval first.
	assert.False(t, CanTransition(ProposalPending, ProposalSent))
	// Revision (back to pending) only from disapproved.
	assert.False(t, CanTransition(ProposalApproved, ProposalPending))
	assert.False(t, CanTransition(ProposalSent, ProposalPending))
	assert.False(t, CanTransition(ProposalCancelled, ProposalPending))
	// Terminal states are closed.
	assert.False(t, CanTransition(ProposalAccepted, ProposalCancelled))
	assert.False(t, CanTransition(ProposalRejected, ProposalPending))
	// Unknown statuses never transition.
	assert.False(t, CanTransition("DRAFT", ProposalPending))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(ProposalAccepted))
	assert.True(t, IsTerminalStatus(ProposalRejected))
	assert.True(t, IsTerminalStatus(ProposalCancelled))
	assert.False(t, IsTerminalStatus(ProposalPending))
	assert.False(t, IsTerminalStatus(ProposalSent))
}

func TestActiveProposalStatuses(t *testing.T) {
	// Only cancellation frees the inquiry for a new proposal.
	assert.False(t, IsActiveProposalStatus(ProposalCancelled))
	for _, status := range []string{ProposalPending, ProposalApproved, ProposalDisapproved, ProposalSent, ProposalAccepted, ProposalRejected} {
		assert.True(t, IsActiveProposalStatus(status), status)
	}
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Pending Review", StatusLabel(ProposalPending))
	assert.Equal(t, "Approved", StatusLabel(ProposalApproved))
	assert.Equal(t, "Rejected", StatusLabel(ProposalRejected))
	assert.Equal(t, "Sent", StatusLabel(ProposalSent))
	// Statuses without a dedicated label pass through literally.
	assert.Equal(t, "DISAPPROVED", StatusLabel(ProposalDisapproved))
	assert.Equal(t, "ACCEPTED", StatusLabel(ProposalAccepted))
}

func TestProposalDataRoundTrip(t *testing.T) {
	var p Proposal
	require.NoError(t, p.SetData(ProposalData{
		ClientName:        "Jane Cruz",
		ServiceType:       ServiceFixedMonthly,
		QuotedAmount:      decimal.RequireFromString("1250.50"),
		EditedHTMLContent: "<p>offer</p>",
	}))

	data, err := p.Data()
	require.NoError(t, err)
	assert.Equal(t, "Jane Cruz", data.ClientName)
	assert.True(t, data.QuotedAmount.Equal(decimal.RequireFromString("1250.5")))
	assert.Equal(t, "<p>offer</p>", data.EditedHTMLContent)
}
