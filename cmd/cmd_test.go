package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kfreiman/piigate/internal/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	classifyJSON, scanJSON, scanRedacted = false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	if err != nil {
		return 1
	}
	return 0
}

func TestClassifyCommand(t *testing.T) {
	t.Run("clean text", func(t *testing.T) {
		out, err := run(t, "", "classify", "See you at the interview")
		require.NoError(t, err)
		assert.Equal(t, "Message is secure and ready to send.\n", out)
	})

	t.Run("pii exits with status 2", func(t *testing.T) {
		out, err := run(t, "", "classify", "Call me at 555-123-4567")
		assert.Equal(t, exitPII, exitCode(err))
		assert.True(t, strings.HasPrefix(out, "Phone: "), out)
	})

	t.Run("json from stdin", func(t *testing.T) {
		out, err := run(t, "My SSN is 123-45-6789\n", "classify", "--json")
		assert.Equal(t, exitPII, exitCode(err))
		assert.Contains(t, out, `"has_pii": true`)
		assert.Contains(t, out, `"category": "SSN"`)
	})

	t.Run("dash reads stdin", func(t *testing.T) {
		out, err := run(t, "thanks!", "classify", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "secure")
	})
}

func TestRedactCommand(t *testing.T) {
	out, err := run(t, "", "redact", "card 4111 1111 1111 1111, mail x@y.org")
	require.NoError(t, err)
	assert.Equal(t, "card [CARD REDACTED], mail [EMAIL REDACTED]\n", out)
}

func TestScanCommand(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.md")
	require.NoError(t, os.WriteFile(resume, []byte("# Jane Doe\n\nSSN: 123-45-6789\n"), 0644))
	clean := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(clean, []byte("Looking for cleared roles\n"), 0644))

	t.Run("findings", func(t *testing.T) {
		out, err := run(t, "", "scan", "--redacted", resume)
		assert.Equal(t, exitPII, exitCode(err))
		assert.Contains(t, out, "1 finding(s) [SSN]")
		assert.Contains(t, out, "line 3: SSN: SSN: [SSN REDACTED]")
		assert.NotContains(t, out, "123-45-6789")
	})

	t.Run("clean", func(t *testing.T) {
		out, err := run(t, "", "scan", clean)
		require.NoError(t, err)
		assert.Equal(t, clean+": clean\n", out)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := run(t, "", "scan", filepath.Join(dir, "resume.docx"))
		var unsupported *scan.UnsupportedFormatError
		assert.True(t, errors.As(err, &unsupported))
	})
}

func TestFormatReport(t *testing.T) {
	report := &scan.Report{Source: "r.txt", Clean: true, Redacted: "hello"}
	assert.Equal(t, "r.txt: clean\n\nhello\n", formatReport(report, true))
}
