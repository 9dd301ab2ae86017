package scan

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kfreiman/piigate/internal/pii"
	"github.com/kfreiman/piigate/internal/redaction"
	"github.com/kfreiman/piigate/internal/storage"
)

// Scan results reported to the observer
const (
	ResultClean = "clean"
	ResultPII   = "pii"
	ResultError = "error"
)

// maxExcerptLength bounds the redacted line carried by a finding
const maxExcerptLength = 160

// Finding is a line of a document that would be blocked as a message
type Finding struct {
	Line     int          `json:"line"`
	Category pii.Category `json:"category"`
	Message  string       `json:"message"`
	// Excerpt is the line after redaction, never the raw text
	Excerpt string `json:"excerpt"`
}

// Report summarizes the PII found in a document
type Report struct {
	Source          string         `json:"source"`
	Clean           bool           `json:"clean"`
	Categories      []string       `json:"categories"`
	Findings        []Finding      `json:"findings"`
	Redacted        string         `json:"redacted"`
	RedactionCounts map[string]int `json:"redaction_counts"`
}

// Observer receives scan outcomes
type Observer interface {
	ObserveScan(result string)
}

type noopObserver struct{}

func (noopObserver) ObserveScan(string) {}

// Scanner checks resumes and other documents for PII before they are shared
type Scanner struct {
	converters []Converter
	classifier *pii.Classifier
	redactor   *redaction.PIIRedactor
	observer   Observer
	logger     *slog.Logger
}

// NewScanner creates a scanner reading documents from fsys with the text,
// PDF and HTML converters registered
func NewScanner(fsys storage.FileSystem) *Scanner {
	return &Scanner{
		converters: []Converter{
			NewTextConverter(fsys),
			NewPDFConverter(fsys),
			NewHTMLConverter(fsys),
		},
		classifier: pii.Default,
		redactor:   redaction.DefaultRedactor,
		observer:   noopObserver{},
		logger:     slog.Default(),
	}
}

// WithLogger sets the logger for the scanner
func (s *Scanner) WithLogger(logger *slog.Logger) *Scanner {
	s.logger = logger
	return s
}

// WithObserver sets the observer notified of scan results
func (s *Scanner) WithObserver(observer Observer) *Scanner {
	if observer == nil {
		observer = noopObserver{}
	}
	s.observer = observer
	return s
}

// WithConverter registers an additional converter, tried before the defaults
func (s *Scanner) WithConverter(c Converter) *Scanner {
	s.converters = append([]Converter{c}, s.converters...)
	return s
}

// Supports reports whether any converter handles path
func (s *Scanner) Supports(path string) bool {
	return s.converterFor(path) != nil
}

func (s *Scanner) converterFor(path string) Converter {
	for _, c := range s.converters {
		if c.Supports(path) {
			return c
		}
	}
	return nil
}

// ScanFile converts the document at path to text and scans it
func (s *Scanner) ScanFile(ctx context.Context, path string) (*Report, error) {
	if err := validatePath(path); err != nil {
		s.observer.ObserveScan(ResultError)
		return nil, err
	}

	c := s.converterFor(path)
	if c == nil {
		s.observer.ObserveScan(ResultError)
		return nil, &UnsupportedFormatError{Path: path, Ext: extOf(path)}
	}

	text, err := c.Convert(ctx, path)
	if err != nil {
		s.observer.ObserveScan(ResultError)
		s.logger.ErrorContext(ctx, "document conversion failed",
			"error", err,
			"path", path,
		)
		return nil, err
	}

	return s.ScanText(ctx, path, text), nil
}

// ScanText scans text line by line. Each non-empty line is classified the
// same way a message would be; line numbers are 1-based.
func (s *Scanner) ScanText(ctx context.Context, source, text string) *Report {
	report := &Report{
		Source:     source,
		Categories: []string{},
		Findings:   []Finding{},
	}

	seen := make(map[pii.Category]bool)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		verdict := s.classifier.Classify(line)
		if !verdict.HasPII {
			continue
		}
		report.Findings = append(report.Findings, Finding{
			Line:     i + 1,
			Category: verdict.Category,
			Message:  verdict.Message,
			Excerpt:  excerpt(s.redactor.RedactString(line)),
		})
		for _, c := range s.classifier.Detect(line) {
			seen[c] = true
		}
	}

	for _, c := range pii.Categories() {
		if seen[c] {
			report.Categories = append(report.Categories, c.String())
		}
	}

	report.Clean = len(report.Findings) == 0
	report.Redacted = s.redactor.RedactString(text)
	report.RedactionCounts = s.redactor.CountMatches([]byte(text))

	result := ResultClean
	if !report.Clean {
		result = ResultPII
	}
	s.observer.ObserveScan(result)

	s.logger.InfoContext(ctx, "document scanned",
		"source", source,
		"result", result,
		"findings", len(report.Findings),
		"categories", strings.Join(report.Categories, ","),
	)

	return report
}

// excerpt truncates s on a rune boundary
func excerpt(s string) string {
	if len(s) <= maxExcerptLength {
		return s
	}
	cut := maxExcerptLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
