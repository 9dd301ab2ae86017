package redaction

import (
	"regexp"

	"github.com/kfreiman/piigate/internal/pii"
)

// Rule masks every match of Pattern with Token
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
	Token   string
}

// DefaultRules returns the display redaction rules in the order they are applied.
// Patterns share the classifier's whitespace class.
func DefaultRules() []Rule {
	return []Rule{
		{
			Label:   "ssn",
			Pattern: pii.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Token:   "[SSN REDACTED]",
		},
		{
			Label:   "id",
			Pattern: pii.MustCompile(`\b\d{9}\b`),
			Token:   "[ID REDACTED]",
		},
		{
			Label:   "email",
			Pattern: pii.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
			Token:   "[EMAIL REDACTED]",
		},
		{
			Label:   "card",
			Pattern: pii.MustCompile(`\b\d{4}[\s\-]?\d{4}[\s\-]?\d{4}[\s\-]?\d{4}\b`),
			Token:   "[CARD REDACTED]",
		},
	}
}

// PIIRedactor masks sensitive substrings for display. Unlike the classifier it
// never stops early and has no platform-address exemption.
type PIIRedactor struct {
	rules []Rule
}

// NewPIIRedactor creates a redactor with the default rules
func NewPIIRedactor() *PIIRedactor {
	return NewPIIRedactorWithRules(DefaultRules())
}

// NewPIIRedactorWithRules creates a redactor applying rules in the given order
func NewPIIRedactorWithRules(rules []Rule) *PIIRedactor {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &PIIRedactor{rules: copied}
}

// Rules returns a copy of the configured rules
func (r *PIIRedactor) Rules() []Rule {
	rules := make([]Rule, len(r.rules))
	copy(rules, r.rules)
	return rules
}

// RedactContent returns a redacted copy of content; the input is not modified
func (r *PIIRedactor) RedactContent(content []byte) []byte {
	result := append([]byte(nil), content...)

	// Each rule rewrites the output of the previous one
	for _, rule := range r.rules {
		result = rule.Pattern.ReplaceAllLiteral(result, []byte(rule.Token))
	}

	return result
}

// RedactString removes PII from a string
func (r *PIIRedactor) RedactString(content string) string {
	result := content
	for _, rule := range r.rules {
		result = rule.Pattern.ReplaceAllLiteralString(result, rule.Token)
	}
	return result
}

// CountMatches counts rule matches per label on the unredacted content
func (r *PIIRedactor) CountMatches(content []byte) map[string]int {
	counts := make(map[string]int, len(r.rules))
	for _, rule := range r.rules {
		counts[rule.Label] = len(rule.Pattern.FindAllIndex(content, -1))
	}
	return counts
}

// DefaultRedactor is the default PII redactor instance
var DefaultRedactor = NewPIIRedactor()

// Redact is a convenience function that uses the default redactor
func Redact(content []byte) []byte {
	return DefaultRedactor.RedactContent(content)
}

// RedactString is a convenience function that uses the default redactor
func RedactString(content string) string {
	return DefaultRedactor.RedactString(content)
}
