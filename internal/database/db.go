package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.Client{},
		&model.ClientAddress{},
		&model.Lead{},
		&model.Inquiry{},
		&model.ProposalTemplate{},
		&model.Proposal{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// SeedDefaultTemplates inserts a starter template per service type plus a
// default fallback, skipping any service type that already has one.
func SeedDefaultTemplates(db *gorm.DB) error {
	templates := []model.ProposalTemplate{
		{
			Name:        "Fixed Monthly Service",
			ServiceType: model.ServiceFixedMonthly,
			IsDefault:   true,
			HTMLTemplate: `<p>Dear {{clientName}},</p>
<p>Thank you for your interest. {{#if clientCompany}}We are pleased to present {{clientCompany}} with {{/if}}our fixed monthly waste collection service.</p>
<p>Proposed start date: {{proposalDate}}</p>
{{#if quotedAmount}}<p>Monthly rate: {{quotedAmount}}</p>{{/if}}
{{#if notes}}<p>{{notes}}</p>{{/if}}
<p>Sincerely,<br>The Service Team</p>`,
		},
		{
			Name:        "Per Collection Service",
			ServiceType: model.ServicePerCollection,
			HTMLTemplate: `<p>Dear {{clientName}},</p>
<p>We propose an on-demand collection arrangement{{#if clientAddress}} for {{clientAddress}}{{/if}}.</p>
{{#if quotedAmount}}<p>Rate per collection: {{quotedAmount}}</p>{{/if}}
<p>Sincerely,<br>The Service Team</p>`,
		},
		{
			Name:        "One-Time Clearout",
			ServiceType: model.ServiceOneTimeClearout,
			HTMLTemplate: `<p>Dear {{clientName}},</p>
<p>This proposal covers a one-time clearout{{#if clientAddress}} at {{clientAddress}}{{/if}} on {{proposalDate}}.</p>
{{#if quotedAmount}}<p>Total: {{quotedAmount}}</p>{{/if}}
<p>Sincerely,<br>The Service Team</p>`,
		},
		{
			Name:        "Recycling Program",
			ServiceType: model.ServiceRecyclingProgram,
			HTMLTemplate: `<p>Dear {{clientName}},</p>
<p>We are pleased to propose a recycling program{{#if clientCompany}} for {{clientCompany}}{{/if}}.</p>
{{#if quotedAmount}}<p>Monthly program fee: {{quotedAmount}}</p>{{/if}}
<p>Sincerely,<br>The Service Team</p>`,
		},
	}

	for i := range templates {
		t := &templates[i]
		var existing model.ProposalTemplate
		result := db.Where("service_type = ?", t.ServiceType).First(&existing)
		if result.Error == nil {
			continue
		}
		if err := db.Create(t).Error; err != nil {
			return err
		}
	}
	return nil
}
