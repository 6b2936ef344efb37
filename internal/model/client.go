package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddressType enum constants
const (
	AddressTypeBilling        = "BILLING"
	AddressTypeCollectionSite = "COLLECTION_SITE"
)

// Client represents a company we already do (or did) business with. Inquiries
// from known contacts get linked to their client record.
type Client struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	CompanyName   string          `gorm:"type:varchar(255)" json:"company_name"`
	TaxCode       string          `gorm:"type:varchar(50)" json:"tax_code"`
	ContactPerson string          `gorm:"type:varchar(255)" json:"contact_person"`
	Position      string          `gorm:"type:varchar(100)" json:"position"`
	Phone         string          `gorm:"type:varchar(50)" json:"phone"`
	Email         string          `gorm:"type:varchar(255);index" json:"email"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	Addresses     []ClientAddress `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"addresses"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ClientAddress represents a client's billing address or a collection site
type ClientAddress struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	AddressType string    `gorm:"type:varchar(20);not null" json:"address_type"` // BILLING, COLLECTION_SITE
	FullAddress string    `gorm:"type:text;not null" json:"full_address"`
	IsDefault   bool      `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
