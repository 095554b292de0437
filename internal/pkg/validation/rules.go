package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// Malaysian IC number, new format: YYMMDD-PB-###G
	ICPattern = `^\d{6}-\d{2}-\d{4}$`

	// Malaysian phone number, optional country code
	PhonePattern = `^(\+?60|0)[0-9]{8,10}$`

	// Application reference number: APP-<year>-<5 digit sequence>
	ApplicationRefPattern = `^APP-\d{4}-\d{5}$`

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	IC             *regexp.Regexp
	Phone          *regexp.Regexp
	ApplicationRef *regexp.Regexp
}{
	IC:             regexp.MustCompile(ICPattern),
	Phone:          regexp.MustCompile(PhonePattern),
	ApplicationRef: regexp.MustCompile(ApplicationRefPattern),
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}

	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// ValidIC reports whether the value is a well-formed Malaysian IC number.
func ValidIC(value string) bool {
	return NewStringValidation(value).WithPattern(CompiledPatterns.IC).Validate()
}

// phoneSeparators strips the dash and space separators people write phone
// numbers with, e.g. "012-345 6789".
var phoneSeparators = strings.NewReplacer("-", "", " ", "")

// ValidPhone reports whether the value is a plausible Malaysian phone
// number. Separator characters are ignored before matching.
func ValidPhone(value string) bool {
	return NewStringValidation(phoneSeparators.Replace(value)).
		WithPattern(CompiledPatterns.Phone).
		Validate()
}

// ValidApplicationRef reports whether the value matches the reference number
// format allocated on submission.
func ValidApplicationRef(value string) bool {
	return NewStringValidation(value).WithPattern(CompiledPatterns.ApplicationRef).Validate()
}

// ValidName reports whether the value is an acceptable person name.
func ValidName(value string) bool {
	return NewStringValidation(value).
		WithMinLength(NameMinLength).
		WithMaxLength(NameMaxLength).
		Validate()
}
