package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProposalStatus enum constants
const (
	ProposalPending     = "PENDING"
	ProposalApproved    = "APPROVED"
	ProposalDisapproved = "DISAPPROVED"
	ProposalSent        = "SENT"
	ProposalAccepted    = "ACCEPTED"
	ProposalRejected    = "REJECTED"
	ProposalCancelled   = "CANCELLED"
)

// proposalTransitions lists every legal status transition this service may
// perform. ACCEPTED and REJECTED are written only through the client-decision
// callback; the review UI renders them but never initiates them.
var proposalTransitions = map[string]map[string]bool{
	ProposalPending:     {ProposalApproved: true, ProposalDisapproved: true, ProposalCancelled: true},
	ProposalApproved:    {ProposalSent: true, ProposalCancelled: true},
	ProposalDisapproved: {ProposalPending: true}, // revision resubmits under the same id
	ProposalSent:        {ProposalAccepted: true, ProposalRejected: true},
	ProposalAccepted:    {},
	ProposalRejected:    {},
	ProposalCancelled:   {},
}

// CanTransition reports whether a proposal may move from one status to another.
func CanTransition(from, to string) bool {
	next, ok := proposalTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// IsTerminalStatus reports whether no further transition can leave the status.
func IsTerminalStatus(status string) bool {
	return len(proposalTransitions[status]) == 0
}

// IsActiveProposalStatus reports whether a proposal in this status still blocks
// its inquiry from getting a new one. Only cancellation frees the inquiry.
func IsActiveProposalStatus(status string) bool {
	return status != ProposalCancelled
}

// StatusLabel maps a status to the label shown on the review listing.
// Statuses without a dedicated label pass through their literal value.
func StatusLabel(status string) string {
	switch status {
	case ProposalPending:
		return "Pending Review"
	case ProposalApproved:
		return "Approved"
	case ProposalRejected:
		return "Rejected"
	case ProposalSent:
		return "Sent"
	default:
		return status
	}
}

// ProposalData is the structured document stored as one jsonb blob on the
// proposal row. The client fields and the rendered content are the two halves
// of a single document version.
type ProposalData struct {
	ClientName        string          `json:"clientName"`
	ClientEmail       string          `json:"clientEmail"`
	ClientPhone       string          `json:"clientPhone"`
	ClientCompany     string          `json:"clientCompany"`
	ClientPosition    string          `json:"clientPosition,omitempty"`
	ClientAddress     string          `json:"clientAddress"`
	ProposalDate      string          `json:"proposalDate"`
	ServiceType       string          `json:"serviceType"`
	Notes             string          `json:"notes,omitempty"`
	QuotedAmount      decimal.Decimal `json:"quotedAmount"`
	EditedHTMLContent string          `json:"editedHtmlContent"`
	EditedJSONContent json.RawMessage `json:"editedJsonContent,omitempty"`
}

// Proposal is the negotiable document generated for a client, tracked through
// review, delivery and the client's decision.
type Proposal struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InquiryID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"inquiry_id"`
	Inquiry         *Inquiry   `gorm:"foreignKey:InquiryID" json:"inquiry,omitempty"`
	TemplateID      *uuid.UUID `gorm:"type:uuid" json:"template_id"` // nullable once content diverges from the template
	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ProposalData    string     `gorm:"type:jsonb;not null" json:"proposal_data"` // serialized ProposalData
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	AdminNotes      string     `gorm:"type:text" json:"admin_notes"` // internal only, attached on approval
	PDFURL          string     `gorm:"type:text" json:"pdf_url"`     // empty means preview must be generated on demand
	CreatedBy       *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	Creator         *User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer        *User      `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	SentAt          *time.Time `json:"sent_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Data deserializes the stored document blob.
func (p *Proposal) Data() (ProposalData, error) {
	var data ProposalData
	err := json.Unmarshal([]byte(p.ProposalData), &data)
	return data, err
}

// SetData serializes and stores the document blob.
func (p *Proposal) SetData(data ProposalData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	p.ProposalData = string(raw)
	return nil
}
