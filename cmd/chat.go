package cmd

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/console"
	"github.com/spigell/interview-insights/internal/conversation"
	"github.com/spigell/interview-insights/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Enter interview notes interactively and ask for an analysis",
	Run: func(_ *cobra.Command, _ []string) {
		chat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chat() {
	// Ctrl-C at the prompt ends the loop like "exit"; a signal while a
	// request is in flight terminates the process.
	ctx := context.Background()

	// stdout belongs to the conversation.
	logger, err := newLogger("stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	completer, err := newCompleter(ctx, config.AI, nil, logger)
	if err != nil {
		logger.Fatal("configuring the ai provider", zap.Error(err))
	}

	sessionID := uuid.NewString()
	logger.Debug("starting a chat session",
		zap.String("version", version),
		zap.String("session_id", sessionID),
		zap.String("provider", completer.provider),
		zap.String("model", completer.model),
	)

	service := session.NewService(
		conversation.NewStore(),
		completer,
		session.Budgets{
			Acknowledge: config.AI.Budgets.Acknowledge,
			Analyze:     config.AI.Budgets.Analyze,
		},
		config.AI.MaxLogLength,
		logger,
	)

	printer := console.NewPrinter(os.Stdout, console.IsTerminal(os.Stdout))
	printer.Banner()

	loop := session.NewLoop(service, sessionID, console.NewLineReader(os.Stdin, os.Stdout), printer, logger)
	if err := loop.Run(ctx); err != nil {
		logger.Fatal("chat session failed", zap.Error(err))
	}
}
