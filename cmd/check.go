package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kfreiman/piigate/internal/pii"
	"github.com/kfreiman/piigate/internal/redaction"
	"github.com/spf13/cobra"
)

// exitPII is the exit status of classify when the text contains PII
const exitPII = 2

var classifyJSON bool

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Check text for personal information",
	Long: `Classify text against the PII categories in precedence order and
print the verdict. Reads standard input when no text is given or text is "-".
Exits with status 2 when the text contains PII.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputText(cmd, args)
		if err != nil {
			return err
		}

		verdict := pii.Classify(text)
		out := cmd.OutOrStdout()
		if classifyJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(verdict); err != nil {
				return err
			}
		} else if verdict.HasPII {
			fmt.Fprintf(out, "%s: %s\n", verdict.Category, verdict.Message)
		} else {
			fmt.Fprintln(out, verdict.Message)
		}

		if verdict.HasPII {
			return &exitError{code: exitPII}
		}
		return nil
	},
}

// redactCmd represents the redact command
var redactCmd = &cobra.Command{
	Use:   "redact [text]",
	Short: "Mask sensitive substrings in text",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := inputText(cmd, args)
		if err != nil {
			return err
		}
		redacted := redaction.RedactString(text)
		if !strings.HasSuffix(redacted, "\n") {
			redacted += "\n"
		}
		_, err = io.WriteString(cmd.OutOrStdout(), redacted)
		return err
	},
}

// inputText returns the single argument, or standard input for none or "-"
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the verdict as JSON")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(redactCmd)
}
