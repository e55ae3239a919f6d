package verdict

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by NewEngine for an unusable Config.
var ErrInvalidConfig = errors.New("invalid engine config")

// ShapeMismatchError is returned when the probability vector and the label
// set have different lengths.
type ShapeMismatchError struct {
	Got  int
	Want int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("probability vector has %d values, label set has %d", e.Got, e.Want)
}

// Mismatch is a single disagreement between the Model's declared class at an
// index and the label configured at that index. A missing side is "".
type Mismatch struct {
	Index    int    `json:"index"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// LabelOrderMismatchError means the configured labels do not line up with the
// Model's index mapping. Serving must not proceed.
type LabelOrderMismatchError struct {
	Mismatches []Mismatch
}

func (e *LabelOrderMismatchError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("[%d] expected %q, got %q", m.Index, m.Expected, m.Actual))
	}
	return "label order mismatch: " + strings.Join(parts, "; ")
}
