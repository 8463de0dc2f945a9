package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-insights/internal/console"
	"github.com/spigell/interview-insights/internal/extract"
	"github.com/spigell/interview-insights/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [files...]",
	Short: "Build one report from note files and inline notes",
	Run: func(cmd *cobra.Command, args []string) {
		runReport(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringArrayP("text", "t", nil, "inline notes, may be repeated")
	reportCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
}

func runReport(cmd *cobra.Command, files []string) {
	ctx := context.Background()

	logger, err := newLogger("stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	texts, _ := cmd.Flags().GetStringArray("text")
	output, _ := cmd.Flags().GetString("output")

	extractor := extract.New(extract.Capabilities{PDF: config.Extract.PDF, Word: config.Extract.Word})
	notes, err := collectNotes(extractor, files, texts, logger)
	if err != nil {
		logger.Fatal("reading notes", zap.Error(err))
	}

	completer, err := newCompleter(ctx, config.AI, nil, logger)
	if err != nil {
		logger.Fatal("configuring the ai provider", zap.Error(err))
	}

	builder := report.NewBuilder(completer, config.AI.Budgets.Report, config.AI.MaxLogLength, logger)
	rep, err := builder.Build(ctx, notes)
	if err != nil {
		logger.Fatal("building the report", zap.Error(err))
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(rep.Analysis+"\n"), 0o644); err != nil {
			logger.Fatal("writing the report", zap.String("filename", output), zap.Error(err))
		}
		logger.Info("report written",
			zap.String("filename", output),
			zap.Int("notes_count", rep.NotesCount),
		)
		return
	}

	printer := console.NewPrinter(os.Stdout, console.IsTerminal(os.Stdout))
	fmt.Fprintln(os.Stdout, printer.Render(rep.Analysis))
}

// collectNotes orders files before inline text, mirroring the upload form.
// Unreadable formats keep their slot with a placeholder.
func collectNotes(extractor *extract.Extractor, files, texts []string, log *zap.Logger) ([]report.NoteSet, error) {
	notes := make([]report.NoteSet, 0, len(files)+len(texts))

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		name := filepath.Base(file)
		content, err := extractor.Content(name, data)
		if err != nil {
			log.Warn("file replaced by placeholder", zap.String("filename", file), zap.Error(err))
		}
		notes = append(notes, report.NoteSet{Source: name, Content: content})
	}

	for i, text := range texts {
		if text = strings.TrimSpace(text); text == "" {
			continue
		}
		notes = append(notes, report.NoteSet{Source: report.ManualSource(i + 1), Content: text})
	}

	return notes, nil
}
