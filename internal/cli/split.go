// Package cli implements the srx-split and srx-bench commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	srx "github.com/jamesainslie/go-srx"
	"github.com/jamesainslie/go-srx/internal/config"
	"github.com/spf13/cobra"
)

// maxLineSize bounds a single input line.
const maxLineSize = 16 * 1024 * 1024

// NewSplitCommand creates the srx-split command.
func NewSplitCommand() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "srx-split",
		Short: "Split text into sentences using SRX rules",
		Long: `Split text into sentences using the segmentation rules of an SRX file.

Each input line is segmented on its own and every segment is written on a
line of its own. Rules are chosen by matching --language against the
language map of the SRX file.`,
		Example: `  # Split a file with English rules
  srx-split -s rules/segment.srx -i book.txt

  # Read stdin, show rule diagnostics
  echo "Mr. Smith left. He ran." | srx-split -s segment.srx -l en -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg := res.Config
			if err := cfg.ValidateSplit(); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Level())
			if res.FileUsed != "" {
				logger.Debug("using config file", "path", res.FileUsed)
			}
			return runSplit(cmd.Context(), cfg, logger, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./srx.yaml)")
	flags.StringP("srxfile", "s", "", "SRX rules file (required)")
	flags.StringP("language", "l", config.DefaultLanguage, "language code used to select rules")
	flags.StringP("input", "i", config.Stdio, "input file, - for stdin")
	flags.StringP("output", "o", config.Stdio, "output file, - for stdout")
	addCommonFlags(cmd)

	return cmd
}

// addCommonFlags registers the flags shared by all commands.
func addCommonFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolP("verbose", "v", false, "print rule diagnostics and debug logs")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.Duration("match-timeout", 0, "timeout of a single pattern match, 0 for none")

	_ = cmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func loadRuleset(path string, cfg *config.Config, logger *slog.Logger) (*srx.Ruleset, error) {
	return srx.LoadFile(path, srx.WithLogger(logger), srx.WithMatchTimeout(cfg.MatchTimeout))
}

func runSplit(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	rs, err := loadRuleset(cfg.SRXFile, cfg, logger)
	if err != nil {
		return err
	}
	rules := rs.LanguageRules(cfg.Language)
	logger.Debug("resolved rules", "language", cfg.Language, "rules", rules.Len(), "errors", rs.Errors().Len())

	if cfg.Verbose {
		printDiagnostics(stderr, rs, rules, NewStyles())
	}

	in, closeIn, err := openInput(cfg.Input, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(cfg.Output, stdout)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeOut())
	}()

	w := bufio.NewWriter(out)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lines := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSuffix(sc.Text(), "\r")
		for seg := range rules.Split(line) {
			_, _ = w.WriteString(seg)
			_ = w.WriteByte('\n')
		}
		lines++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Debug("split complete", "lines", lines)
	return nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == config.Stdio {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == config.Stdio {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
