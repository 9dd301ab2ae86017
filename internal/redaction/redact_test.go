package redaction

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact_SSNAndEmail(t *testing.T) {
	redacted := RedactString("SSN 123-45-6789, email a@b.com")

	assert.Equal(t, "SSN [SSN REDACTED], email [EMAIL REDACTED]", redacted)
	assert.NotRegexp(t, regexp.MustCompile(`\d`), redacted)
	assert.NotContains(t, redacted, "@")
}

func TestRedact_IDs(t *testing.T) {
	content := []byte("Employee 123456789 and badge 987654321")
	redacted := Redact(content)

	assert.Equal(t, "Employee [ID REDACTED] and badge [ID REDACTED]", string(redacted))
}

func TestRedact_Cards(t *testing.T) {
	assert.Equal(t, "Card: [CARD REDACTED]", RedactString("Card: 4111 1111 1111 1111"))
	assert.Equal(t, "Card: [CARD REDACTED]", RedactString("Card: 4111-1111-1111-1111"))
	assert.Equal(t, "Card: [CARD REDACTED]", RedactString("Card: 4111111111111111"))
	assert.Equal(t, "Card: [CARD REDACTED]", RedactString("Card: 4111\u00a01111\u00a01111\u00a01111"))
	assert.Equal(t, "Card: [CARD REDACTED]", RedactString("Card: 4111\v1111\u20091111\u30001111"))
}

func TestRedact_PlatformEmailIsNotExempt(t *testing.T) {
	assert.Equal(t, "[EMAIL REDACTED]", RedactString("jane@clearedadvisory.com"))
}

func TestRedact_PhonesAreLeftAlone(t *testing.T) {
	content := "Call 703-555-1212"
	assert.Equal(t, content, RedactString(content))
}

func TestRedact_NoPII(t *testing.T) {
	content := []byte("This is a normal text without any personal information")
	redacted := Redact(content)

	assert.Equal(t, string(content), string(redacted))
	assert.Equal(t, "", RedactString(""))
}

func TestRedact_RulesApplyInOrder(t *testing.T) {
	// The ID rule runs before the email rule and consumes the local part
	assert.Equal(t, "[ID REDACTED]@x.com", RedactString("123456789@x.com"))
}

func TestRedact_DoesNotMutateInput(t *testing.T) {
	content := []byte("reach me at john@example.com")
	original := string(content)

	_ = Redact(content)

	assert.Equal(t, original, string(content))
}

func TestRedact_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"SSN 123-45-6789, email a@b.com",
		"123456789@x.com",
		"card 4111 1111 1111 1111 and id 123456789",
		"mixed: x@y.io, 987-65-4321, 1234567812345678, plain words",
		"[SSN REDACTED] [EMAIL REDACTED]",
	}

	for _, input := range inputs {
		once := RedactString(input)
		assert.Equal(t, once, RedactString(once), "input %q", input)
		assert.Equal(t, once, string(Redact([]byte(input))), "input %q", input)
	}
}

func TestCountMatches(t *testing.T) {
	redactor := NewPIIRedactor()
	counts := redactor.CountMatches([]byte("Emails: a@test.com, b@test.com. SSN: 123-45-6789"))

	assert.Equal(t, 2, counts["email"])
	assert.Equal(t, 1, counts["ssn"])
	assert.Equal(t, 0, counts["id"])
	assert.Equal(t, 0, counts["card"])
}

func TestNewPIIRedactorWithRules(t *testing.T) {
	rules := DefaultRules()[2:3]
	redactor := NewPIIRedactorWithRules(rules)

	assert.Equal(t, "[EMAIL REDACTED] 123-45-6789", redactor.RedactString("a@b.com 123-45-6789"))
	assert.Len(t, redactor.Rules(), 1)
	assert.NotNil(t, DefaultRedactor)
	assert.Len(t, DefaultRedactor.Rules(), 4)
}
