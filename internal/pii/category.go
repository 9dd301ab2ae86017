package pii

import (
	"fmt"
	"strings"
)

// Category identifies the kind of personal information a verdict refers to.
// The numeric order of the constants is the detection precedence.
type Category int

const (
	// CategoryNone is the zero value carried by clean verdicts
	CategoryNone Category = iota
	CategorySSN
	CategoryDateOfBirth
	CategoryGovernmentID
	CategoryCreditCard
	CategoryPhone
	CategoryAddress
	CategoryEmail
	CategoryContextualSensitive
)

var categoryLabels = map[Category]string{
	CategoryNone:                "",
	CategorySSN:                 "SSN",
	CategoryDateOfBirth:         "DOB",
	CategoryGovernmentID:        "ID",
	CategoryCreditCard:          "Credit Card",
	CategoryPhone:               "Phone",
	CategoryAddress:             "Address",
	CategoryEmail:               "Email",
	CategoryContextualSensitive: "Context",
}

// Categories returns every detectable category in precedence order
func Categories() []Category {
	return []Category{
		CategorySSN,
		CategoryDateOfBirth,
		CategoryGovernmentID,
		CategoryCreditCard,
		CategoryPhone,
		CategoryAddress,
		CategoryEmail,
		CategoryContextualSensitive,
	}
}

// String returns the label shown to users and used on the wire
func (c Category) String() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryLabels[c]; !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts a label back into a Category. Matching ignores case
// and surrounding whitespace; an empty label yields CategoryNone.
func ParseCategory(label string) (Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return CategoryNone, nil
	}
	for c, l := range categoryLabels {
		if l != "" && strings.EqualFold(l, label) {
			return c, nil
		}
	}
	return CategoryNone, fmt.Errorf("unknown PII category %q", label)
}
