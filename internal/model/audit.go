package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateInquiry = "CREATE_INQUIRY"
	ActionUpdateInquiry = "UPDATE_INQUIRY"
	ActionDeleteInquiry = "DELETE_INQUIRY"
	ActionCreateClient  = "CREATE_CLIENT"
	ActionUpdateClient  = "UPDATE_CLIENT"
	ActionDeleteClient  = "DELETE_CLIENT"

	// Lead pool actions
	ActionCreateLead  = "CREATE_LEAD"
	ActionClaimLead   = "CLAIM_LEAD"
	ActionConvertLead = "CONVERT_LEAD"
	ActionDropLead    = "DROP_LEAD"

	// Proposal workflow actions
	ActionCreateProposal     = "CREATE_PROPOSAL"
	ActionApproveProposal    = "APPROVE_PROPOSAL"
	ActionDisapproveProposal = "DISAPPROVE_PROPOSAL"
	ActionReviseProposal     = "REVISE_PROPOSAL"
	ActionSendProposal       = "SEND_PROPOSAL"
	ActionCancelProposal     = "CANCEL_PROPOSAL"
	ActionClientDecision     = "CLIENT_DECISION"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
