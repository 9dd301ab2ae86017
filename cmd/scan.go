package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kfreiman/piigate/internal/scan"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/spf13/cobra"
)

var (
	scanJSON     bool
	scanRedacted bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Scan a document for personal information line by line",
	Long: `Convert a document (.txt, .md, .pdf, .html) to text and report every line
that would be blocked as a message. Exits with status 2 when PII is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmdConf, err := loadCmdConfig()
		if err != nil {
			return err
		}
		logger := createLogger(cmdConf)

		scanner := scan.NewScanner(storage.NewOSFileSystem()).WithLogger(logger)
		report, err := scanner.ScanFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scanJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			fmt.Fprint(out, formatReport(report, scanRedacted))
		}

		if !report.Clean {
			return &exitError{code: exitPII}
		}
		return nil
	},
}

// formatReport renders a scan report as plain text
func formatReport(report *scan.Report, withRedacted bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: ", report.Source)
	if report.Clean {
		sb.WriteString("clean\n")
	} else {
		fmt.Fprintf(&sb, "%d finding(s) [%s]\n", len(report.Findings), strings.Join(report.Categories, ", "))
	}
	for _, f := range report.Findings {
		fmt.Fprintf(&sb, "  line %d: %s: %s\n", f.Line, f.Category, f.Excerpt)
	}
	if withRedacted {
		sb.WriteString("\n")
		sb.WriteString(report.Redacted)
		if !strings.HasSuffix(report.Redacted, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the report as JSON")
	scanCmd.Flags().BoolVar(&scanRedacted, "redacted", false, "print the redacted document after the findings")

	rootCmd.AddCommand(scanCmd)
}
