package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/config"
	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/logging"
	"github.com/skm16/skmdigital/pkg/server"
	"github.com/skm16/skmdigital/pkg/site"
)

var (
	servePort        int
	serveAddr        string
	serveOpenBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the site server (landing page + contact API)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}

		log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		schema := inquiry.Default()
		composer, sender := newMailer(cfg, schema, log)

		deps := server.Deps{
			Schema:   schema,
			Composer: composer,
			Content:  site.Default().WithLinks(cfg.Site.BaseURL, cfg.Site.SchedulingURL),
			Logger:   log,
		}
		if sender != nil {
			deps.Sender = sender
		}
		srv, err := server.New(server.Config{
			Addr:            cfg.Server.ListenAddr(),
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			OpenBrowser:     serveOpenBrowser,
		}, deps)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.Run(ctx); err != nil {
			log.Error("Server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port to listen on (overrides SERVER_PORT)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Interface to bind (overrides SERVER_ADDR)")
	serveCmd.Flags().BoolVar(&serveOpenBrowser, "open-browser", false, "Open the site in the system browser")
	rootCmd.AddCommand(serveCmd)
}
