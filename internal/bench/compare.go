package bench

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	srx "github.com/jamesainslie/go-srx"
	"golang.org/x/sync/errgroup"
)

// Result holds the aggregate score of one ruleset.
type Result struct {
	Name       string // ruleset filename without extension
	Path       string
	Rules      int // rules resolved for the language
	RuleErrors int // rules skipped at parse time
	Metrics    Metrics
}

// Compare scores each SRX file against docs for one language and returns the
// results sorted by weighted score, best first. Files are evaluated
// concurrently.
func Compare(ctx context.Context, docs []*Document, paths []string, language string, cfg Config, opts ...srx.Option) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			r, err := evaluateRuleset(ctx, docs, path, language, cfg, opts...)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sort by weighted score descending
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metrics.WeightedScore > results[j].Metrics.WeightedScore
	})

	return results, nil
}

func evaluateRuleset(ctx context.Context, docs []*Document, path, language string, cfg Config, opts ...srx.Option) (Result, error) {
	rs, err := srx.LoadFile(path, opts...)
	if err != nil {
		return Result{}, err
	}
	rules := rs.LanguageRules(language)

	ms := make([]Metrics, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("evaluating %s: %w", path, err)
		}
		ms = append(ms, EvaluateDocument(rules, doc, cfg))
	}

	base := filepath.Base(path)
	return Result{
		Name:       strings.TrimSuffix(base, filepath.Ext(base)),
		Path:       path,
		Rules:      rules.Len(),
		RuleErrors: rs.Errors().Len(),
		Metrics:    Aggregate(ms, cfg),
	}, nil
}
