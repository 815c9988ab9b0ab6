package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/channel"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Example: `  resume-matcher analyze --resume cv.pdf --job job.txt
  resume-matcher analyze --resume cv.md --job-text "Senior Go engineer, Kubernetes"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAnalyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "resume file (pdf or text)")
	analyzeCmd.Flags().String("resume-text", "", "resume text")
	analyzeCmd.Flags().StringP("job", "b", "", "job description file (pdf or text)")
	analyzeCmd.Flags().String("job-text", "", "job description text")
	analyzeCmd.Flags().Bool("no-animate", false, "print the report without animation")

	analyzeCmd.MarkFlagsMutuallyExclusive("resume", "resume-text")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-text")
	analyzeCmd.MarkFlagsOneRequired("resume", "resume-text")
	analyzeCmd.MarkFlagsOneRequired("job", "job-text")
}

// input is where one field comes from on the command line.
type input struct {
	kind channel.Kind
	file string
	text string
}

func runAnalyze(cmd *cobra.Command) error {
	config, logger := setup()
	defer logger.Sync()

	noAnimate, _ := cmd.Flags().GetBool("no-animate")

	s, err := newSession(config, logger, sessionOptions{
		out:      os.Stdout,
		status:   os.Stderr,
		notifier: lineNotifier{out: os.Stderr},
		animate:  !noAnimate,
	})
	if err != nil {
		logger.Fatal("starting a session", zap.Error(err))
	}

	resumeFile, _ := cmd.Flags().GetString("resume")
	resumeText, _ := cmd.Flags().GetString("resume-text")
	jobFile, _ := cmd.Flags().GetString("job")
	jobText, _ := cmd.Flags().GetString("job-text")

	return s.run(cmd.Context(), []input{
		{kind: channel.Resume, file: resumeFile, text: resumeText},
		{kind: channel.Job, file: jobFile, text: jobText},
	})
}

// run acquires every input concurrently and submits them once all settled.
func (s *session) run(ctx context.Context, inputs []input) error {
	var g errgroup.Group
	for _, in := range inputs {
		g.Go(func() error {
			if in.file != "" {
				return s.loadFile(ctx, in.kind, in.file)
			}
			return s.paste(ctx, in.kind, in.text)
		})
	}

	if err := g.Wait(); err != nil {
		s.printChannelErrors()
		return err
	}

	return s.analyze(ctx)
}
