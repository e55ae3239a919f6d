// Package verdict turns a classifier's probability vector into a prediction
// verdict: rejection gate, confidence tier, ranked alternatives and guidance.
package verdict

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

const (
	DefaultRejectionThreshold = 0.50

	highThreshold   = 0.90
	mediumThreshold = 0.70
)

// Config is fixed at engine construction. Labels must be in the Model's
// training index order.
type Config struct {
	Labels             []string
	RejectionThreshold float64
}

func DefaultConfig() Config {
	return Config{
		Labels:             append([]string(nil), DefaultLabels...),
		RejectionThreshold: DefaultRejectionThreshold,
	}
}

// Engine is immutable after NewEngine and safe for concurrent use.
type Engine struct {
	labels    []string
	threshold float64
}

func NewEngine(cfg Config) (*Engine, error) {
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("%w: empty label set", ErrInvalidConfig)
	}
	if math.IsNaN(cfg.RejectionThreshold) || cfg.RejectionThreshold < 0 || cfg.RejectionThreshold > 1 {
		return nil, fmt.Errorf("%w: rejection threshold %v outside [0,1]", ErrInvalidConfig, cfg.RejectionThreshold)
	}
	seen := make(map[string]struct{}, len(cfg.Labels))
	for i, l := range cfg.Labels {
		if l == "" {
			return nil, fmt.Errorf("%w: empty label at index %d", ErrInvalidConfig, i)
		}
		if l == Unidentified {
			return nil, fmt.Errorf("%w: %q is reserved for rejected predictions", ErrInvalidConfig, Unidentified)
		}
		if _, dup := seen[l]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrInvalidConfig, l)
		}
		seen[l] = struct{}{}
	}
	return &Engine{
		labels:    append([]string(nil), cfg.Labels...),
		threshold: cfg.RejectionThreshold,
	}, nil
}

// Labels returns a copy of the configured label set.
func (e *Engine) Labels() []string {
	return append([]string(nil), e.labels...)
}

func (e *Engine) Threshold() float64 {
	return e.threshold
}

// HasLabel reports whether label belongs to the configured label set.
func (e *Engine) HasLabel(label string) bool {
	return slices.Contains(e.labels, label)
}

// Classify is pure and deterministic. The only error is *ShapeMismatchError.
// NaN entries are scored as 0. Exact ties in the argmax go to the lowest index.
func (e *Engine) Classify(probabilities []float64) (*Verdict, error) {
	if len(probabilities) != len(e.labels) {
		return nil, &ShapeMismatchError{Got: len(probabilities), Want: len(e.labels)}
	}

	scores := make([]float64, len(probabilities))
	for i, p := range probabilities {
		if math.IsNaN(p) {
			p = 0
		}
		scores[i] = p
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	confidence := scores[best]

	if confidence < e.threshold {
		return &Verdict{
			PredictedClass: Unidentified,
			Confidence:     confidence,
			Reliability:    Unreliable,
			AllPredictions: []Alternative{},
			Guidance:       unidentifiedGuidance(e.threshold),
			IsUnidentified: true,
		}, nil
	}

	tier, reliability := tierFor(confidence)
	label := e.labels[best]

	return &Verdict{
		PredictedClass:  label,
		Confidence:      confidence,
		ConfidenceLevel: tier,
		Reliability:     reliability,
		AllPredictions:  e.rank(scores),
		Guidance:        guidanceFor(label, tier, e.threshold),
	}, nil
}

func tierFor(confidence float64) (Tier, Reliability) {
	switch {
	case confidence >= highThreshold:
		return TierHigh, Reliable
	case confidence >= mediumThreshold:
		return TierMedium, Moderate
	default:
		return TierLow, Uncertain
	}
}

// rank sorts descending by score; equal scores keep label index order.
func (e *Engine) rank(scores []float64) []Alternative {
	out := make([]Alternative, len(scores))
	for i, s := range scores {
		out[i] = Alternative{Class: e.labels[i], Confidence: s}
	}
	slices.SortStableFunc(out, func(a, b Alternative) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return out
}
