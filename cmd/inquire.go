package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/cli"
	"github.com/skm16/skmdigital/pkg/config"
	"github.com/skm16/skmdigital/pkg/contact"
	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/logging"
)

type wizardFlags struct {
	endpoint string
	logFile  string
	// useEndpoint forces submission through the contact endpoint even when
	// an email credential is available locally.
	useEndpoint bool
}

var inquireFlags wizardFlags

var inquireCmd = &cobra.Command{
	Use:   "inquire",
	Short: "Run the project inquiry wizard against a site server",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := inquireFlags
		flags.useEndpoint = true
		return runWizard(flags)
	},
}

func init() {
	inquireCmd.Flags().StringVar(&inquireFlags.endpoint, "endpoint", "", "Contact endpoint URL (default CONTACT_ENDPOINT or "+config.DefaultEndpoint+")")
	inquireCmd.Flags().StringVar(&inquireFlags.logFile, "log-file", "", "Append wizard logs to this file")
	rootCmd.AddCommand(inquireCmd)
}

func runWizard(flags wizardFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if flags.logFile != "" {
		log, err = logging.NewFile(cfg.Log.Level, flags.logFile)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	schema := inquiry.Default()
	endpoint := flags.endpoint
	if endpoint == "" {
		endpoint = cfg.Client.Endpoint
	}

	var submitter cli.Submitter = cli.EndpointSubmitter{Client: contact.NewClient(endpoint, cfg.Client.Timeout)}
	if !flags.useEndpoint && flags.endpoint == "" {
		if composer, sender := newMailer(cfg, schema, log); sender != nil {
			submitter = cli.DirectSubmitter{Schema: schema, Composer: composer, Sender: sender, Logger: log}
		}
	}
	log.Info("Starting inquiry wizard", zap.String("endpoint", endpoint))

	return cli.RunWizard(cli.Options{
		Schema:        schema,
		Submitter:     submitter,
		SchedulingURL: cfg.Site.SchedulingURL,
		Logger:        log,
	})
}
