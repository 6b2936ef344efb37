package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LeadStatus enum constants
const (
	LeadPooled    = "POOLED"
	LeadClaimed   = "CLAIMED"
	LeadConverted = "CONVERTED"
	LeadDropped   = "DROPPED"
)

// LeadSource enum constants
const (
	LeadSourceWeb      = "WEB"
	LeadSourceReferral = "REFERRAL"
	LeadSourceColdCall = "COLD_CALL"
	LeadSourceEvent    = "EVENT"
)

// Lead sits in the shared pool until a sales user claims it. A claimed lead is
// converted into an Inquiry (one transaction) or dropped back out of the pool.
type Lead struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Source         string          `gorm:"type:varchar(20);not null;index" json:"source"`
	ContactName    string          `gorm:"type:varchar(255);not null" json:"contact_name"`
	ContactEmail   string          `gorm:"type:varchar(255)" json:"contact_email"`
	ContactPhone   string          `gorm:"type:varchar(50)" json:"contact_phone"`
	CompanyName    string          `gorm:"type:varchar(255)" json:"company_name"`
	EstimatedValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_value"`
	Status         string          `gorm:"type:varchar(20);not null;default:'POOLED';index" json:"status"`
	ClaimedBy      *uuid.UUID      `gorm:"type:uuid;index" json:"claimed_by"`
	Claimer        *User           `gorm:"foreignKey:ClaimedBy" json:"claimer,omitempty"`
	ClaimedAt      *time.Time      `json:"claimed_at"`
	InquiryID      *uuid.UUID      `gorm:"type:uuid" json:"inquiry_id"` // set on conversion
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}
