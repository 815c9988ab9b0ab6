package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matcher"
	"github.com/spigell/resume-matcher/internal/utils"
)

const previewLength = 60

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent analyses stored by the backend",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := setup()
		defer logger.Sync()

		s, err := newSession(config, logger, sessionOptions{out: os.Stdout, status: os.Stderr, notifier: lineNotifier{out: os.Stderr}})
		if err != nil {
			logger.Fatal("starting a session", zap.Error(err))
		}

		records, err := s.client.History(cmd.Context())
		if err != nil {
			logger.Fatal("loading analyses", zap.Error(err))
		}

		logger.Debug("loaded analyses", zap.Int("count", len(records)))
		printHistory(os.Stdout, records)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func printHistory(w io.Writer, records []*matcher.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No analyses yet")
		return
	}

	for _, record := range records {
		result := record.Result()
		fmt.Fprintf(w, "%s  %s\n", record.CreatedAt, color.New(color.Bold).Sprintf("%d%%", result.MatchScore))
		fmt.Fprintf(w, "  resume: %s\n", utils.TruncateForLog(record.ResumeText, previewLength))
		fmt.Fprintf(w, "  job:    %s\n", utils.TruncateForLog(record.JobDescription, previewLength))
		if len(result.MatchedSkills) > 0 {
			fmt.Fprintf(w, "  matched: %d, missing: %d\n", len(result.MatchedSkills), len(result.MissingSkills))
		}
	}
}
