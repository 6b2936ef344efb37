package model

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType enum constants: the fixed set of waste-collection offerings.
// Each service type maps 1:1 to a proposal template.
const (
	ServiceFixedMonthly     = "FIXED_MONTHLY"
	ServicePerCollection    = "PER_COLLECTION"
	ServiceOneTimeClearout  = "ONE_TIME_CLEAROUT"
	ServiceRecyclingProgram = "RECYCLING_PROGRAM"
)

// IsValidServiceType reports whether t is one of the known service types.
func IsValidServiceType(t string) bool {
	switch t {
	case ServiceFixedMonthly, ServicePerCollection, ServiceOneTimeClearout, ServiceRecyclingProgram:
		return true
	default:
		return false
	}
}

// ProposalTemplate is a reusable HTML skeleton keyed by service type. The
// HTMLTemplate body carries placeholder syntax ({{field}}, {{#if field}}...)
// resolved by the templating package. Templates are read-only from the
// proposal subsystem; they are maintained out of band and only looked up here.
type ProposalTemplate struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	ServiceType  string    `gorm:"type:varchar(30);not null;index" json:"service_type"`
	HTMLTemplate string    `gorm:"type:text;not null" json:"html_template"`
	IsDefault    bool      `gorm:"default:false" json:"is_default"` // fallback when no per-type template exists
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
