package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/config"
	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/mail"
)

var rootCmd = &cobra.Command{
	Use:   "skmdigital",
	Short: "SKM.digital site server and project inquiry wizard",
	Long: `Serves the SKM.digital marketing site and its contact endpoint, and
runs the project inquiry wizard in the terminal.

Run without arguments to start the wizard.`,
	SilenceUsage: true,
}

var questionsJSON bool

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the project inquiry questions and their rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := inquiry.Default()
		out := cmd.OutOrStdout()
		if questionsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(schema.Questions())
		}

		fmt.Fprintf(out, "  %-16s %-9s %s\n", "ID", "KIND", "RULES")
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, q := range schema.Questions() {
			fmt.Fprintf(out, "  %-16s %-9s %s\n", q.ID, q.Kind, describeRules(q))
		}
		return nil
	},
}

func init() {
	questionsCmd.Flags().BoolVar(&questionsJSON, "json", false, "Print the schema as JSON")
	rootCmd.AddCommand(questionsCmd)
}

// Execute runs the wizard when invoked without arguments, otherwise the
// matching subcommand.
func Execute() error {
	if len(os.Args) == 1 {
		return runWizard(wizardFlags{})
	}
	return rootCmd.Execute()
}

func describeRules(q inquiry.Question) string {
	var parts []string
	if q.Rules.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	switch {
	case q.Rules.MinLength > 0 && q.Rules.MaxLength > 0:
		parts = append(parts, fmt.Sprintf("%d-%d chars", q.Rules.MinLength, q.Rules.MaxLength))
	case q.Rules.MinLength > 0:
		parts = append(parts, fmt.Sprintf(">= %d chars", q.Rules.MinLength))
	case q.Rules.MaxLength > 0:
		parts = append(parts, fmt.Sprintf("<= %d chars", q.Rules.MaxLength))
	}
	if q.Rules.Pattern != "" {
		parts = append(parts, "pattern "+q.Rules.Pattern)
	}
	if len(q.Options) > 0 {
		values := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			values = append(values, o.Value)
		}
		parts = append(parts, "one of "+strings.Join(values, "|"))
	}
	return strings.Join(parts, ", ")
}

// newMailer builds the composer and, when a credential is configured, the
// sender. A nil sender means email is not configured.
func newMailer(cfg *config.Config, schema *inquiry.Schema, log *zap.Logger) (*mail.Composer, mail.Sender) {
	composer := mail.NewComposer(schema, cfg.Mail.From, cfg.Mail.To, cfg.Mail.Location)
	sender, err := mail.NewResendSender(cfg.Mail.APIKey)
	if err != nil {
		log.Warn("RESEND_API_KEY not set; contact submissions will fail until it is configured")
		return composer, nil
	}
	return composer, sender
}
