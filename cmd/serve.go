package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/conversation"
	"github.com/spigell/interview-insights/internal/extract"
	"github.com/spigell/interview-insights/internal/metrics"
	"github.com/spigell/interview-insights/internal/report"
	"github.com/spigell/interview-insights/internal/server"
	"github.com/spigell/interview-insights/internal/session"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload and conversation endpoints over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :5000)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger("")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	maxUpload, err := parseMaxUpload(config.Server.MaxUpload)
	if err != nil {
		logger.Fatal("parsing server.max-upload", zap.Error(err))
	}

	m := metrics.New()

	completer, err := newCompleter(ctx, config.AI, m, logger)
	switch {
	case completer == nil:
		logger.Fatal("configuring the ai provider", zap.Error(err))
	case err != nil:
		logger.Warn("starting without a usable provider credential, every analysis will fail",
			zap.String("provider", completer.provider),
			zap.Error(err),
		)
	}

	srv := server.New(server.Config{
		MaxUploadBytes:   maxUpload,
		RateLimit:        config.Server.RateLimit,
		RateBurst:        config.Server.RateBurst,
		Provider:         completer.provider,
		Model:            completer.model,
		APIKeyConfigured: completer.configured,
	}, server.Deps{
		Reports: report.NewBuilder(completer, config.AI.Budgets.Report, config.AI.MaxLogLength, logger),
		Sessions: session.NewService(
			conversation.NewStore(),
			completer,
			session.Budgets{
				Acknowledge: config.AI.Budgets.Acknowledge,
				Analyze:     config.AI.Budgets.Analyze,
			},
			config.AI.MaxLogLength,
			logger,
		),
		Extractor: extract.New(extract.Capabilities{
			PDF:  config.Extract.PDF,
			Word: config.Extract.Word,
		}),
		Metrics: m,
	}, logger)

	logger.Info("starting the interview-insights server",
		zap.String("version", version),
		zap.String("provider", completer.provider),
		zap.String("model", completer.model),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(config.Server.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("serving http", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// parseMaxUpload accepts human sizes such as "50MB" or "16 MiB". Empty means
// the server default.
func parseMaxUpload(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return server.DefaultMaxUploadBytes, nil
	}

	size, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, err
	}
	return int64(size), nil
}
