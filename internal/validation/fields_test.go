package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientNameRules(t *testing.T) {
	assert.Error(t, ValidateField(FieldClientName, ""))
	assert.Error(t, ValidateField(FieldClientName, "J"))
	assert.Error(t, ValidateField(FieldClientName, "John123"))
	assert.NoError(t, ValidateField(FieldClientName, "Jane Cruz"))
	assert.NoError(t, ValidateField(FieldClientName, "O'Brien-Smith Jr."))
}

func TestClientEmailRules(t *testing.T) {
	assert.Error(t, ValidateField(FieldClientEmail, ""))
	assert.Error(t, ValidateField(FieldClientEmail, "not-an-email"))
	assert.Error(t, ValidateField(FieldClientEmail, "a@b"))
	assert.Error(t, ValidateField(FieldClientEmail, "a b@c.com"))
	assert.NoError(t, ValidateField(FieldClientEmail, "jane@acme.com"))
}

func TestClientPhoneDigitBoundary(t *testing.T) {
	// 6 digits fails, 7 digits passes
	assert.Error(t, ValidateField(FieldClientPhone, "123456"))
	assert.NoError(t, ValidateField(FieldClientPhone, "1234567"))
	// punctuation is stripped before counting
	assert.NoError(t, ValidateField(FieldClientPhone, "+1 (234) 567-8"))
	assert.Error(t, ValidateField(FieldClientPhone, "+1 (23) 45-6"))
	assert.Error(t, ValidateField(FieldClientPhone, "123456x"))
}

func TestCompanyAndAddressMinLength(t *testing.T) {
	assert.Error(t, ValidateField(FieldClientCompany, "A"))
	assert.NoError(t, ValidateField(FieldClientCompany, "Acme"))
	assert.Error(t, ValidateField(FieldClientAddress, "1 St"))
	assert.NoError(t, ValidateField(FieldClientAddress, "1 Main Street"))
}

func TestProposalDatePresenceOnly(t *testing.T) {
	assert.Error(t, ValidateField(FieldProposalDate, ""))
	assert.NoError(t, ValidateField(FieldProposalDate, "2026-08-30"))
}

func TestUnknownFieldHasNoRule(t *testing.T) {
	assert.NoError(t, ValidateField("somethingElse", ""))
}

func TestValidateAllCollectsFailures(t *testing.T) {
	errs := ValidateAll(map[string]string{
		FieldClientName:    "Jane Cruz",
		FieldClientEmail:   "jane@acme.com",
		FieldClientPhone:   "123456",
		FieldClientCompany: "Acme",
		FieldClientAddress: "1 Main Street",
		FieldProposalDate:  "2026-08-30",
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs, FieldClientPhone)
}

func TestRequiredComplete(t *testing.T) {
	fields := map[string]string{
		FieldClientName:    "Jane Cruz",
		FieldClientEmail:   "jane@acme.com",
		FieldClientPhone:   "1234567",
		FieldClientCompany: "Acme",
		FieldClientAddress: "1 Main Street",
		FieldProposalDate:  "2026-08-30",
	}
	assert.True(t, RequiredComplete(fields))

	delete(fields, FieldProposalDate)
	assert.False(t, RequiredComplete(fields))
}
