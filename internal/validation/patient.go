package validation

import (
	"errors"
	"sort"
	"strings"

	"patient-dashboard/internal/models"
)

// PatientInput is the set of add-patient values checked together on submit.
type PatientInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Document    *models.DocumentFile
}

// Errors maps field name to its failure. A non-empty Errors is itself an error.
type Errors map[string]*FieldError

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[f].Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages flattens Errors into field → message.
func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for f, fe := range e {
		out[f] = fe.Message
	}
	return out
}

// Patient runs all four checks and returns the failures, or nil when every field passes.
func (v *Validator) Patient(in PatientInput) Errors {
	errs := Errors{}
	add := func(err error) {
		var fe *FieldError
		if errors.As(err, &fe) {
			errs[fe.Field] = fe
		}
	}
	add(v.FullName(in.FullName))
	add(v.Email(in.Email))
	add(v.PhoneNumber(in.PhoneNumber))
	add(v.DocumentFile(in.Document))

	if len(errs) == 0 {
		return nil
	}
	return errs
}

var defaultValidator = mustNew(DefaultRules())

func mustNew(rules Rules) *Validator {
	v, err := New(rules)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateFullName checks name against DefaultRules.
func ValidateFullName(name string) error { return defaultValidator.FullName(name) }

// ValidateGmailEmail checks email against DefaultRules (gmail.com only).
func ValidateGmailEmail(email string) error { return defaultValidator.Email(email) }

// ValidatePhoneNumber checks phone against DefaultRules.
func ValidatePhoneNumber(phone string) error { return defaultValidator.PhoneNumber(phone) }

// ValidateDocumentFile checks file against DefaultRules.
func ValidateDocumentFile(file *models.DocumentFile) error {
	return defaultValidator.DocumentFile(file)
}
