package pii

import (
	"regexp"
	"strings"
)

// CleanMessage is the fixed message carried by every clean verdict
const CleanMessage = "Message is secure and ready to send."

// PlatformEmailMarker marks addresses on the platform's own domain, which are
// exempt from the email category
const PlatformEmailMarker = "@clearedadvisory"

// Verdict is the outcome of classifying one message
type Verdict struct {
	HasPII   bool     `json:"has_pii"`
	Category Category `json:"category,omitempty"`
	Message  string   `json:"message"`
}

// Clean reports whether the verdict allows the message to be sent
func (v Verdict) Clean() bool {
	return !v.HasPII
}

// detector is one entry of the ordered category battery
type detector struct {
	category Category
	patterns []*regexp.Regexp
	message  string
	// exempt suppresses a match for the whole text
	exempt func(text string) bool
}

func (d detector) matches(text string) bool {
	for _, p := range d.patterns {
		if p.MatchString(text) {
			if d.exempt != nil && d.exempt(text) {
				return false
			}
			return true
		}
	}
	return false
}

// Classifier checks text against the PII categories in precedence order.
// It holds only compiled patterns and is safe for concurrent use.
type Classifier struct {
	detectors []detector
}

// NewClassifier creates a classifier with the standard category battery
func NewClassifier() *Classifier {
	return &Classifier{
		detectors: []detector{
			{
				category: CategorySSN,
				patterns: []*regexp.Regexp{
					MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
					MustCompile(`\b\d{9}\b`),
					MustCompile(`(?i)\bSSN\s*[:=]?\s*\d{3}-?\d{2}-?\d{4}\b`),
				},
				message: "Social Security Numbers cannot be sent through this system.",
			},
			{
				category: CategoryDateOfBirth,
				patterns: []*regexp.Regexp{
					MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`),
					MustCompile(`\b\d{4}[/\-]\d{1,2}[/\-]\d{1,2}\b`),
					MustCompile(`(?i)\b(DOB|Date of Birth|Born)\s*[:=]?\s*\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`),
				},
				message: "Date of birth information cannot be shared.",
			},
			{
				category: CategoryGovernmentID,
				patterns: []*regexp.Regexp{
					MustCompile(`\b[A-Z]{1,2}\d{6,9}\b`),
					MustCompile(`(?i)\bPassport\s*[:=]?\s*[A-Z0-9]{6,9}\b`),
					MustCompile(`(?i)\b(ID|License)\s*[:=]?\s*[A-Z0-9]{6,}\b`),
				},
				message: "Passport or ID numbers are not allowed.",
			},
			{
				category: CategoryCreditCard,
				patterns: []*regexp.Regexp{
					MustCompile(`\b\d{4}[\s\-]?\d{4}[\s\-]?\d{4}[\s\-]?\d{4}\b`),
					MustCompile(`\b\d{16}\b`),
				},
				message: "Credit card information cannot be sent.",
			},
			{
				category: CategoryPhone,
				patterns: []*regexp.Regexp{
					MustCompile(`\b\d{3}[\s\-.]?\d{3}[\s\-.]?\d{4}\b`),
					MustCompile(`\b\(\d{3}\)\s*\d{3}[\s\-.]?\d{4}\b`),
					MustCompile(`\b\+?1?\s*\d{3}[\s\-.]?\d{3}[\s\-.]?\d{4}\b`),
				},
				message: "Please do not share personal phone numbers. Recruiters will contact you through the platform.",
			},
			{
				category: CategoryAddress,
				patterns: []*regexp.Regexp{
					MustCompile(`(?i)\b\d+\s+[A-Za-z\s]+\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Plaza|Pl)\b`),
				},
				message: "Please do not share personal addresses for your security.",
			},
			{
				category: CategoryEmail,
				patterns: []*regexp.Regexp{
					MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
				},
				message: "Please use the platform messaging system instead of sharing personal emails.",
				exempt: func(text string) bool {
					return strings.Contains(text, PlatformEmailMarker)
				},
			},
			{
				category: CategoryContextualSensitive,
				patterns: []*regexp.Regexp{
					MustCompile(`(?i)my\s+(ssn|social|social security)`),
					MustCompile(`(?i)my\s+(dob|birth|birthday)`),
					MustCompile(`(?i)my\s+(passport|license|id\s+number)`),
					MustCompile(`(?i)my\s+(address|home|street)`),
					MustCompile(`(?i)here'?s?\s+my\s+(number|phone|cell)`),
				},
				message: "Your message appears to contain sensitive personal information. Please remove it before sending.",
			},
		},
	}
}

// Classify returns the verdict of the first category, in precedence order,
// whose patterns match the text. Text matching nothing gets a clean verdict.
func (c *Classifier) Classify(text string) Verdict {
	for _, d := range c.detectors {
		if d.matches(text) {
			return Verdict{
				HasPII:   true,
				Category: d.category,
				Message:  d.message,
			}
		}
	}
	return Verdict{Message: CleanMessage}
}

// Detect returns every category whose patterns match the text, in precedence
// order. Unlike Classify it does not stop at the first hit.
func (c *Classifier) Detect(text string) []Category {
	var found []Category
	for _, d := range c.detectors {
		if d.matches(text) {
			found = append(found, d.category)
		}
	}
	return found
}

// MessageFor returns the user-facing explanation for a category
func (c *Classifier) MessageFor(category Category) string {
	for _, d := range c.detectors {
		if d.category == category {
			return d.message
		}
	}
	return CleanMessage
}

// Default is the shared classifier used by the package-level helpers
var Default = NewClassifier()

// Classify classifies text with the default classifier
func Classify(text string) Verdict {
	return Default.Classify(text)
}

// Detect lists matching categories with the default classifier
func Detect(text string) []Category {
	return Default.Detect(text)
}
