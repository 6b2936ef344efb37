package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InquiryStatus enum constants
const (
	InquiryNew       = "NEW"
	InquiryContacted = "CONTACTED"
	InquiryQualified = "QUALIFIED"
	InquiryClosed    = "CLOSED"
)

// Inquiry is an intake record from a prospect asking about a waste-collection
// service. At most one active (non-cancelled) proposal exists per inquiry;
// ProposalID references it.
type Inquiry struct {
	ID                    uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContactName           string          `gorm:"type:varchar(255);not null" json:"contact_name"`
	ContactEmail          string          `gorm:"type:varchar(255);not null;index" json:"contact_email"`
	ContactPhone          string          `gorm:"type:varchar(50)" json:"contact_phone"`
	CompanyName           string          `gorm:"type:varchar(255)" json:"company_name"`
	SiteAddress           string          `gorm:"type:text" json:"site_address"` // where collection would happen
	ServiceType           string          `gorm:"type:varchar(30);index" json:"service_type"`
	EstimatedMonthlyValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_monthly_value"`
	Status                string          `gorm:"type:varchar(20);not null;default:'NEW';index" json:"status"`
	Message               string          `gorm:"type:text" json:"message"` // free-text from the intake form
	ClientID              *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	Client                *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	AssignedTo            *uuid.UUID      `gorm:"type:uuid;index" json:"assigned_to"`
	Assignee              *User           `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	ProposalID            *uuid.UUID      `gorm:"type:uuid" json:"proposal_id"` // active proposal, nil if none or cancelled
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`
}
