// Package validation holds the add-patient field checks. Each check takes one input and
// returns nil or a *FieldError describing what is wrong with it.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"patient-dashboard/internal/models"
)

// Field names as posted by the add-patient form.
const (
	FieldFullName     = "fullName"
	FieldEmail        = "email"
	FieldPhoneNumber  = "phoneNumber"
	FieldDocumentFile = "documentFile"
)

// Failure categories, matched with errors.Is.
var (
	ErrRequired        = errors.New("required")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrTooLong         = errors.New("too long")
	ErrUnsupportedType = errors.New("unsupported type")
	ErrTooLarge        = errors.New("too large")
)

// FieldError is a failed check on one field.
type FieldError struct {
	Field   string
	Kind    error
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func (e *FieldError) Unwrap() error { return e.Kind }

// DefaultPhonePattern allows an optional leading +, then digits separated by spaces,
// dashes, dots or parentheses.
const DefaultPhonePattern = `^\+?[0-9(][0-9 ().-]*[0-9]$`

// LettersOnlyNamePattern restricts names to letters, marks, spaces, apostrophes, dots and dashes.
const LettersOnlyNamePattern = `^[\p{L}\p{M}' .-]+$`

// Rules holds the configurable constraints.
type Rules struct {
	NameMaxLength       int    // 0 means unlimited
	NamePattern         string // empty means any characters
	AllowedEmailDomains []string
	PhonePattern        string
	PhoneMinDigits      int
	PhoneMaxDigits      int
	DocumentRequired    bool
	MaxDocumentBytes    int64
	AllowedExtensions   []string
	AllowedMIMETypes    []string
}

// DefaultRules mirrors the upload control defaults: gmail.com addresses, JPEG documents up to 5 MiB.
func DefaultRules() Rules {
	return Rules{
		AllowedEmailDomains: []string{"gmail.com"},
		PhonePattern:        DefaultPhonePattern,
		PhoneMinDigits:      7,
		PhoneMaxDigits:      15,
		DocumentRequired:    false,
		MaxDocumentBytes:    5 * 1024 * 1024,
		AllowedExtensions:   []string{".jpg", ".jpeg"},
		AllowedMIMETypes:    []string{"image/jpeg"},
	}
}

// Validator runs the field checks against one set of Rules.
type Validator struct {
	rules    Rules
	name     *regexp.Regexp
	phone    *regexp.Regexp
	validate *validator.Validate
}

// New compiles rules. Zero-valued limits fall back to DefaultRules.
func New(rules Rules) (*Validator, error) {
	defaults := DefaultRules()
	if rules.PhonePattern == "" {
		rules.PhonePattern = defaults.PhonePattern
	}
	if rules.PhoneMinDigits <= 0 {
		rules.PhoneMinDigits = defaults.PhoneMinDigits
	}
	if rules.PhoneMaxDigits <= 0 {
		rules.PhoneMaxDigits = defaults.PhoneMaxDigits
	}
	if rules.MaxDocumentBytes <= 0 {
		rules.MaxDocumentBytes = defaults.MaxDocumentBytes
	}
	if len(rules.AllowedExtensions) == 0 {
		rules.AllowedExtensions = defaults.AllowedExtensions
	}
	if len(rules.AllowedMIMETypes) == 0 {
		rules.AllowedMIMETypes = defaults.AllowedMIMETypes
	}

	if rules.PhoneMinDigits > rules.PhoneMaxDigits {
		return nil, fmt.Errorf("phone digit range %d-%d is empty", rules.PhoneMinDigits, rules.PhoneMaxDigits)
	}

	var name *regexp.Regexp
	if rules.NamePattern != "" {
		var err error
		if name, err = regexp.Compile(rules.NamePattern); err != nil {
			return nil, fmt.Errorf("invalid name pattern: %w", err)
		}
	}
	phone, err := regexp.Compile(rules.PhonePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid phone pattern: %w", err)
	}

	rules.AllowedEmailDomains = lowerAll(rules.AllowedEmailDomains)
	rules.AllowedExtensions = lowerAll(rules.AllowedExtensions)
	rules.AllowedMIMETypes = lowerAll(rules.AllowedMIMETypes)

	return &Validator{rules: rules, name: name, phone: phone, validate: validator.New()}, nil
}

// Rules returns the effective rules.
func (v *Validator) Rules() Rules { return v.rules }

// FullName fails when name is blank. Length and character limits apply only when
// configured.
func (v *Validator) FullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fieldError(FieldFullName, ErrRequired, "Full name is required")
	}
	if v.rules.NameMaxLength > 0 && utf8.RuneCountInString(name) > v.rules.NameMaxLength {
		return fieldError(FieldFullName, ErrTooLong, fmt.Sprintf("Full name must be at most %d characters", v.rules.NameMaxLength))
	}
	if v.name != nil && !v.name.MatchString(name) {
		return fieldError(FieldFullName, ErrInvalidFormat, "Full name contains characters that are not allowed")
	}
	return nil
}

// Email fails when email is blank, malformed, or outside the allowed domains.
// An empty domain list accepts any well-formed address.
func (v *Validator) Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fieldError(FieldEmail, ErrRequired, "Email is required")
	}
	if err := v.validate.Var(email, "email"); err != nil {
		return fieldError(FieldEmail, ErrInvalidFormat, "Email is not a valid address")
	}
	if len(v.rules.AllowedEmailDomains) == 0 {
		return nil
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	for _, allowed := range v.rules.AllowedEmailDomains {
		if domain == allowed {
			return nil
		}
	}
	return fieldError(FieldEmail, ErrInvalidFormat,
		fmt.Sprintf("Email must be an address at %s", strings.Join(v.rules.AllowedEmailDomains, " or ")))
}

// PhoneNumber fails when phone is blank or does not match the configured pattern.
func (v *Validator) PhoneNumber(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fieldError(FieldPhoneNumber, ErrRequired, "Phone number is required")
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if !v.phone.MatchString(phone) || digits < v.rules.PhoneMinDigits || digits > v.rules.PhoneMaxDigits {
		return fieldError(FieldPhoneNumber, ErrInvalidFormat, "Phone number format is invalid")
	}
	return nil
}

// DocumentFile checks presence, size and type, in that order. Size is checked first so
// an oversize upload is always reported as too large.
func (v *Validator) DocumentFile(file *models.DocumentFile) error {
	if file.Empty() {
		if v.rules.DocumentRequired {
			return fieldError(FieldDocumentFile, ErrRequired, "Document file is required")
		}
		return nil
	}
	if file.Size > v.rules.MaxDocumentBytes {
		return fieldError(FieldDocumentFile, ErrTooLarge,
			fmt.Sprintf("Document file must be at most %s", HumanBytes(v.rules.MaxDocumentBytes)))
	}

	unsupported := fieldError(FieldDocumentFile, ErrUnsupportedType,
		fmt.Sprintf("Document file must be one of: %s", strings.Join(v.rules.AllowedExtensions, ", ")))
	if !contains(v.rules.AllowedExtensions, strings.ToLower(filepath.Ext(file.Filename))) {
		return unsupported
	}
	detected := mimetype.Detect(file.Content)
	for _, allowed := range v.rules.AllowedMIMETypes {
		if detected.Is(allowed) {
			return nil
		}
	}
	return unsupported
}

// Accept returns the upload control's accept attribute value.
func (v *Validator) Accept() string {
	return strings.Join(v.rules.AllowedExtensions, ",")
}

func fieldError(field string, kind error, msg string) *FieldError {
	return &FieldError{Field: field, Kind: kind, Message: msg}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// HumanBytes formats a byte count the way limits are shown to users.
func HumanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
