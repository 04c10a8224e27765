package cli

import (
	"errors"
	"fmt"
	"io"

	srx "github.com/jamesainslie/go-srx"
	"github.com/jamesainslie/go-srx/internal/bench"
	"github.com/jamesainslie/go-srx/internal/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewBenchCommand creates the srx-bench command.
func NewBenchCommand() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "srx-bench [flags] RULES.srx...",
		Short: "Rank SRX rulesets against a gold sentence corpus",
		Long: `Segment every gold document of a corpus with each SRX file and rank the
files by weighted precision and recall of their sentence boundaries.

Gold documents are .txt files with a "# Source:" header, an optional
"# Language:" header and one sentence per line.`,
		Example: `  srx-bench --corpus testdata/gold -l en default.srx naive.srx`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg := res.Config
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Bench.Corpus == "" {
				return errors.New("corpus is required\nHint: pass --corpus or set bench.corpus in srx.yaml")
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Level())

			docs, err := bench.LoadCorpus(cfg.Bench.Corpus)
			if err != nil {
				return err
			}
			docs = bench.FilterLanguage(docs, cfg.Language)
			if len(docs) == 0 {
				return fmt.Errorf("no gold documents for language %q in %s", cfg.Language, cfg.Bench.Corpus)
			}
			logger.Debug("loaded corpus", "dir", cfg.Bench.Corpus, "documents", len(docs))

			bcfg := bench.Config{
				Tolerance:       cfg.Bench.Tolerance,
				PrecisionWeight: cfg.Bench.PrecisionWeight,
				RecallWeight:    cfg.Bench.RecallWeight,
			}
			results, err := bench.Compare(cmd.Context(), docs, args, cfg.Language, bcfg,
				srx.WithLogger(logger), srx.WithMatchTimeout(cfg.MatchTimeout))
			if err != nil {
				return err
			}

			renderResults(cmd.OutOrStdout(), results)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d documents, language %s)\n", len(docs), cfg.Language)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./srx.yaml)")
	flags.StringP("language", "l", config.DefaultLanguage, "language code used to select rules")
	flags.String("corpus", "", "directory of gold .txt documents")
	flags.Int("tolerance", config.DefaultTolerance, "boundary match tolerance in bytes")
	flags.Float64("precision-weight", 1.0, "weight of precision in the score")
	flags.Float64("recall-weight", 1.0, "weight of recall in the score")
	addCommonFlags(cmd)

	return cmd
}

func renderResults(w io.Writer, results []bench.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"#", "Ruleset", "Rules", "Errors", "TP", "FP", "FN", "Precision", "Recall", "F1", "Score"})
	for i, r := range results {
		m := r.Metrics
		t.AppendRow(table.Row{
			i + 1, r.Name, r.Rules, r.RuleErrors,
			m.TruePositives, m.FalsePositives, m.FalseNegatives,
			fmt.Sprintf("%.4f", m.Precision),
			fmt.Sprintf("%.4f", m.Recall),
			fmt.Sprintf("%.4f", m.F1),
			fmt.Sprintf("%.4f", m.WeightedScore),
		})
	}

	t.Render()
}
