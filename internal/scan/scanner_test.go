package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kfreiman/piigate/internal/pii"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	results []string
}

func (o *recordingObserver) ObserveScan(result string) {
	o.results = append(o.results, result)
}

func newTestScanner(t *testing.T, files map[string]string) (*Scanner, *recordingObserver) {
	t.Helper()
	fsys := storage.NewMemMapFileSystem()
	require.NoError(t, fsys.MkdirAll("/docs", 0755))
	for name, content := range files {
		require.NoError(t, fsys.WriteFile(name, []byte(content), 0644))
	}
	obs := &recordingObserver{}
	return NewScanner(fsys).WithObserver(obs), obs
}

const resume = `Jane Candidate
Senior Engineer
Phone: 555-123-4567
Email: jane@example.com

SSN 123-45-6789
`

func TestScanner_ScanFile(t *testing.T) {
	ctx := context.Background()

	t.Run("reports findings per line", func(t *testing.T) {
		scanner, obs := newTestScanner(t, map[string]string{"/docs/resume.txt": resume})

		report, err := scanner.ScanFile(ctx, "/docs/resume.txt")
		require.NoError(t, err)

		assert.Equal(t, "/docs/resume.txt", report.Source)
		assert.False(t, report.Clean)
		assert.Equal(t, []string{"SSN", "Phone", "Email"}, report.Categories)

		require.Len(t, report.Findings, 3)
		assert.Equal(t, 3, report.Findings[0].Line)
		assert.Equal(t, pii.CategoryPhone, report.Findings[0].Category)
		assert.Equal(t, 4, report.Findings[1].Line)
		assert.Equal(t, pii.CategoryEmail, report.Findings[1].Category)
		assert.Equal(t, "Email: [EMAIL REDACTED]", report.Findings[1].Excerpt)
		assert.Equal(t, 6, report.Findings[2].Line)
		assert.Equal(t, pii.CategorySSN, report.Findings[2].Category)
		assert.Equal(t, "SSN [SSN REDACTED]", report.Findings[2].Excerpt)
		assert.Equal(t, "Social Security Numbers cannot be sent through this system.", report.Findings[2].Message)

		assert.NotContains(t, report.Redacted, "123-45-6789")
		assert.NotContains(t, report.Redacted, "jane@example.com")
		assert.Equal(t, 1, report.RedactionCounts["ssn"])
		assert.Equal(t, 1, report.RedactionCounts["email"])
		assert.Equal(t, 0, report.RedactionCounts["card"])

		assert.Equal(t, []string{ResultPII}, obs.results)
	})

	t.Run("clean document", func(t *testing.T) {
		scanner, obs := newTestScanner(t, map[string]string{
			"/docs/summary.md": "# Summary\n\nBuilt distributed systems in Go.\nLed a team of five.\n",
		})

		report, err := scanner.ScanFile(ctx, "/docs/summary.md")
		require.NoError(t, err)
		assert.True(t, report.Clean)
		assert.Empty(t, report.Findings)
		assert.Empty(t, report.Categories)
		assert.Equal(t, []string{ResultClean}, obs.results)
	})

	t.Run("rejects unsafe paths", func(t *testing.T) {
		scanner, obs := newTestScanner(t, nil)

		for _, path := range []string{"/docs/../etc/passwd.txt", "/docs/a\x00.txt", ""} {
			_, err := scanner.ScanFile(ctx, path)
			require.Error(t, err)
			var secErr *SecurityError
			assert.True(t, errors.As(err, &secErr), "path %q", path)
		}
		assert.Len(t, obs.results, 3)
	})

	t.Run("unsupported format", func(t *testing.T) {
		scanner, _ := newTestScanner(t, map[string]string{"/docs/resume.docx": "x"})

		_, err := scanner.ScanFile(ctx, "/docs/resume.docx")
		var unsupported *UnsupportedFormatError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, ".docx", unsupported.Ext)
		assert.False(t, scanner.Supports("/docs/resume.docx"))
		assert.True(t, scanner.Supports("/docs/resume.PDF"))
	})

	t.Run("missing file", func(t *testing.T) {
		scanner, obs := newTestScanner(t, nil)

		_, err := scanner.ScanFile(ctx, "/docs/missing.txt")
		var nf *FileNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "/docs/missing.txt", nf.Path)
		assert.Equal(t, []string{ResultError}, obs.results)
	})

	t.Run("invalid pdf", func(t *testing.T) {
		scanner, _ := newTestScanner(t, map[string]string{"/docs/resume.pdf": "This is not a PDF"})

		_, err := scanner.ScanFile(ctx, "/docs/resume.pdf")
		var convErr *ConversionError
		require.True(t, errors.As(err, &convErr))
		assert.Equal(t, "pdf", convErr.Format)
	})

	t.Run("html document", func(t *testing.T) {
		page := `<!DOCTYPE html>
<html>
<head><title>Resume - John Doe</title><script>var ssn = "000-00-0000";</script></head>
<body>
    <main>
        <article>
            <h1>John Doe</h1>
            <h2>Software Engineer</h2>
            <p>Senior Developer at TechCorp from 2020 until 2024, building web applications with Go and React.</p>
            <p>Contact me directly at john.doe@example.com for references and further details.</p>
            <p>BS Computer Science, University of Technology, with a focus on distributed systems.</p>
        </article>
    </main>
</body>
</html>`
		scanner, _ := newTestScanner(t, map[string]string{"/docs/resume.html": page})

		report, err := scanner.ScanFile(ctx, "/docs/resume.html")
		require.NoError(t, err)
		assert.False(t, report.Clean)
		assert.Contains(t, report.Categories, "Email")
		assert.NotContains(t, report.Categories, "SSN")
		assert.NotContains(t, report.Redacted, "john.doe@example.com")
	})
}

func TestScanner_ScanText(t *testing.T) {
	scanner, _ := newTestScanner(t, nil)

	report := scanner.ScanText(context.Background(), "paste", "Reach me at team@clearedadvisory.com\r\nmy home is nearby")
	require.Len(t, report.Findings, 1)
	assert.Equal(t, 2, report.Findings[0].Line)
	assert.Equal(t, pii.CategoryContextualSensitive, report.Findings[0].Category)
	assert.Equal(t, []string{"Context"}, report.Categories)
}

func TestVisibleText(t *testing.T) {
	text, err := visibleText([]byte(`<html><head><style>p{}</style></head><body><h1>Title</h1><script>alert(1)</script><p>Some <b>bold</b> text</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Title\nSome\nbold\ntext", text)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short"))

	long := strings.Repeat("é", maxExcerptLength)
	got := excerpt(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxExcerptLength+3)
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, "...")))
}

func TestErrors(t *testing.T) {
	err := &ConversionError{Path: "/a.pdf", Format: "pdf", Err: errors.New("bad header"), Hint: "failed to open PDF"}
	assert.Equal(t, "conversion failed for /a.pdf (format: pdf): bad header\nHint: failed to open PDF", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "bad header")

	assert.Equal(t, "security violation (null_byte): path contains null bytes",
		(&SecurityError{Type: "null_byte", Details: "path contains null bytes"}).Error())
	assert.Equal(t, "unsupported document format: /x", (&UnsupportedFormatError{Path: "/x"}).Error())
}
