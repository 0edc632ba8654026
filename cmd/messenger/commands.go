package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"messenger-api/config"
	"messenger-api/config/common"
	"messenger-api/config/logger"
	"messenger-api/mail"
)

var (
	cfg *common.Config

	rootCmd = &cobra.Command{
		Use:   "messenger",
		Short: "Messaging API server and its background workers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = common.NewViper()
		},
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.RunServer(cfg)
		},
	}

	mailerCmd = &cobra.Command{
		Use:   "mailer",
		Short: "Consume the mail queue and deliver verification codes over SMTP",
		RunE:  runMailer,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, mailerCmd, migrateCmd)
}

func runMailer(cmd *cobra.Command, args []string) error {
	_, logDir := cfg.GetLogConfig()
	appLog := logger.NewLogger(logDir)

	amqpConfig := cfg.GetAmqpConfig()
	if amqpConfig.URL == "" {
		return errors.New("AMQP_URL is required for the mailer")
	}
	sender, err := mail.NewSMTPSender(cfg.GetSmtpConfig())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := mail.NewWorker(sender, sender.From(), appLog)
	return worker.Run(ctx, amqpConfig.URL, amqpConfig.Queue)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, logDir := cfg.GetLogConfig()
	appLog := logger.NewLogger(logDir)

	db, err := config.NewDB(cfg, appLog)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.Migrate(db.GetDB()); err != nil {
		return err
	}
	appLog.Http.Info.Info().Msg("Migration finished")
	return nil
}
