// Package validation holds the synchronous per-field rules for the proposal
// wizard's client-info step. Rules are stateless and evaluated independently;
// there are no cross-field rules.
package validation

import (
	"errors"
	"regexp"
	"strings"
)

// Field name constants used by the wizard form.
const (
	FieldClientName    = "clientName"
	FieldClientEmail   = "clientEmail"
	FieldClientPhone   = "clientPhone"
	FieldClientCompany = "clientCompany"
	FieldClientAddress = "clientAddress"
	FieldProposalDate  = "proposalDate"
)

// RequiredFields lists every field that must be present and valid before the
// wizard may advance past the client-info step.
var RequiredFields = []string{
	FieldClientName,
	FieldClientEmail,
	FieldClientPhone,
	FieldClientCompany,
	FieldClientAddress,
	FieldProposalDate,
}

var (
	nameRegex     = regexp.MustCompile(`^[a-zA-Z\s.'-]+$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex    = regexp.MustCompile(`^[0-9\s+()\-]+$`)
	phoneDigits   = regexp.MustCompile(`[0-9]`)
	minPhoneDigit = 7
)

// ValidateField validates a single field value against its rule. Field names
// without a rule validate to nil.
func ValidateField(name, value string) error {
	switch name {
	case FieldClientName:
		if strings.TrimSpace(value) == "" {
			return errors.New("client name is required")
		}
		if len(value) < 2 {
			return errors.New("client name must be at least 2 characters")
		}
		if !nameRegex.MatchString(value) {
			return errors.New("client name may only contain letters, spaces, and .'-")
		}
	case FieldClientEmail:
		if strings.TrimSpace(value) == "" {
			return errors.New("client email is required")
		}
		if !emailRegex.MatchString(value) {
			return errors.New("client email must be a valid email address")
		}
	case FieldClientPhone:
		if strings.TrimSpace(value) == "" {
			return errors.New("client phone is required")
		}
		if !phoneRegex.MatchString(value) {
			return errors.New("client phone may only contain digits, spaces, and +()-")
		}
		if len(phoneDigits.FindAllString(value, -1)) < minPhoneDigit {
			return errors.New("client phone must contain at least 7 digits")
		}
	case FieldClientCompany:
		if strings.TrimSpace(value) == "" {
			return errors.New("company is required")
		}
		if len(value) < 2 {
			return errors.New("company must be at least 2 characters")
		}
	case FieldClientAddress:
		if strings.TrimSpace(value) == "" {
			return errors.New("address is required")
		}
		if len(value) < 5 {
			return errors.New("address must be at least 5 characters")
		}
	case FieldProposalDate:
		if strings.TrimSpace(value) == "" {
			return errors.New("proposal date is required")
		}
	}
	return nil
}

// ValidateAll runs every rule over the form and returns a field→message map
// containing only the fields that failed.
func ValidateAll(fields map[string]string) map[string]string {
	result := make(map[string]string)
	for _, name := range RequiredFields {
		if err := ValidateField(name, fields[name]); err != nil {
			result[name] = err.Error()
		}
	}
	return result
}

// RequiredComplete reports whether every required field is present and passes
// its rule. This is the exact condition under which the wizard is advanceable.
func RequiredComplete(fields map[string]string) bool {
	return len(ValidateAll(fields)) == 0
}
