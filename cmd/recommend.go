package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/dispatch"
	"github.com/sells-group/partner-match/internal/export"
	"github.com/sells-group/partner-match/internal/fetcher"
	"github.com/sells-group/partner-match/internal/ingest"
	"github.com/sells-group/partner-match/internal/lexicon"
	"github.com/sells-group/partner-match/internal/matcher"
	"github.com/sells-group/partner-match/internal/scorer"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Score every user against every service and write recommendations",
	Long: `Loads the user and service sheets named in the config, scores each user
against all services, keeps the best partners above the threshold and writes
them as a flat table.

The input may be an .xlsx workbook, a directory holding <sheet>.csv files,
or an http(s)/ftp URL to a workbook.

Examples:
  # Use ./config.yaml
  partner-match recommend

  # Explicit config, 8 workers, CSV output
  partner-match recommend --config match.yaml --workers 8 --output recs.csv`,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.Int("workers", 0, "concurrent users scored (overrides dispatch.workers)")
	f.String("output", "", "output file path (overrides output.file)")
	f.String("format", "", "output format: xlsx, csv or json (default: from extension)")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyRecommendFlags(cmd, cfg)
	if err := cfg.Validate("recommend"); err != nil {
		return err
	}

	summary, err := recommend(ctx, cfg)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), summary, cfg.Output.File)
	if n := len(summary.Failed); n > 0 {
		return eris.Errorf("recommend: %d of %d users failed", n, summary.Consumers)
	}
	return nil
}

func applyRecommendFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("workers") {
		c.Dispatch.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("output") {
		c.Output.File, _ = f.GetString("output")
	}
	if f.Changed("format") {
		c.Output.Format, _ = f.GetString("format")
	}
}

// recommend runs load, score, rank and export end to end. Recommendations
// of successful users are written even when others failed.
func recommend(ctx context.Context, c *config.Config) (*dispatch.Summary, error) {
	log := zap.L().With(zap.String("command", "recommend"))

	format, err := export.ResolveFormat(c.Output.File, c.Output.Format)
	if err != nil {
		return nil, err
	}

	lex, err := lexicon.Open(ctx, c.Lexicon)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: open lexicon")
	}
	defer lex.Close() //nolint:errcheck

	m, err := matcher.New(c.Matching, lex)
	if err != nil {
		return nil, err
	}
	s, err := scorer.New(c.Matching, m)
	if err != nil {
		return nil, err
	}
	d, err := dispatch.New(s, c.Ranking, c.Dispatch.Workers)
	if err != nil {
		return nil, err
	}

	input, cleanup, err := localInput(ctx, c.Input.FileName)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tables, err := ingest.Load(ctx, input, c.Input)
	if err != nil {
		return nil, err
	}

	recs, summary, err := d.RecommendAll(ctx, tables.Consumers, tables.Providers)
	if err != nil {
		return summary, err
	}

	if err := export.Write(c.Output.File, format, recs); err != nil {
		return summary, err
	}

	log.Info("recommend: complete",
		zap.String("run_id", summary.RunID),
		zap.String("output", c.Output.File),
		zap.Int("recommended", len(recs)),
	)
	return summary, nil
}

// localInput downloads a remote workbook into a temp dir. cleanup removes it.
func localInput(ctx context.Context, input string) (string, func(), error) {
	if !fetcher.IsRemote(input) {
		return input, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "partner-match-*")
	if err != nil {
		return "", nil, eris.Wrap(err, "recommend: create temp dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	remote := fetcher.NewRemote(fetcher.HTTPOptions{}, fetcher.FTPOptions{})
	local, err := remote.Localize(ctx, input, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return local, cleanup, nil
}

func printSummary(w io.Writer, s *dispatch.Summary, output string) {
	fmt.Fprintf(w, "run %s: %d/%d users recommended from %d services, %d failed in %s -> %s\n",
		s.RunID, s.Succeeded, s.Consumers, s.Providers, len(s.Failed), s.Elapsed.Round(time.Millisecond), output)
	for _, f := range s.Failed {
		fmt.Fprintf(w, "  failed %s: %v\n", f.ConsumerID, f.Err)
	}
}
