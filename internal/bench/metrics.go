package bench

import (
	srx "github.com/jamesainslie/go-srx"
)

// Config holds evaluation parameters.
type Config struct {
	Tolerance       int // byte match tolerance
	PrecisionWeight float64
	RecallWeight    float64
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		Tolerance:       1,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
	}
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
	WeightedScore  float64
}

// Evaluate compares predicted boundaries against ground truth.
// Uses greedy left-to-right matching within tolerance.
func Evaluate(predicted, truth []int, cfg Config) Metrics {
	matched := make([]bool, len(truth))
	tp := 0

	for _, p := range predicted {
		for i, t := range truth {
			if matched[i] {
				continue
			}
			diff := p - t
			if diff < 0 {
				diff = -diff
			}
			if diff <= cfg.Tolerance {
				matched[i] = true
				tp++
				break
			}
		}
	}

	return score(tp, len(predicted)-tp, len(truth)-tp, cfg)
}

// EvaluateDocument segments a gold document with rules and scores the
// resulting boundaries.
func EvaluateDocument(rules *srx.Rules, doc *Document, cfg Config) Metrics {
	return Evaluate(rules.Boundaries(doc.Text), doc.Boundaries(), cfg)
}

// Aggregate sums the counts of several evaluations and recomputes the
// ratios from the totals.
func Aggregate(ms []Metrics, cfg Config) Metrics {
	var tp, fp, fn int
	for _, m := range ms {
		tp += m.TruePositives
		fp += m.FalsePositives
		fn += m.FalseNegatives
	}
	return score(tp, fp, fn, cfg)
}

func score(tp, fp, fn int, cfg Config) Metrics {
	m := Metrics{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}

	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	wp := cfg.PrecisionWeight
	wr := cfg.RecallWeight
	if wp+wr > 0 {
		m.WeightedScore = (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}

	return m
}
