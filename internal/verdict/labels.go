package verdict

// CheckLabelOrder compares the Model's declared class order with the
// configured label order and returns every index where they disagree,
// including indices present on only one side.
func CheckLabelOrder(declared, configured []string) []Mismatch {
	n := max(len(declared), len(configured))
	var out []Mismatch
	for i := 0; i < n; i++ {
		var expected, actual string
		if i < len(declared) {
			expected = declared[i]
		}
		if i < len(configured) {
			actual = configured[i]
		}
		if expected != actual {
			out = append(out, Mismatch{Index: i, Expected: expected, Actual: actual})
		}
	}
	return out
}

// ValidateLabelOrder wraps CheckLabelOrder as a *LabelOrderMismatchError.
func ValidateLabelOrder(declared, configured []string) error {
	if m := CheckLabelOrder(declared, configured); len(m) > 0 {
		return &LabelOrderMismatchError{Mismatches: m}
	}
	return nil
}

// ValidateModel checks the engine's labels against the Model's declared order.
func (e *Engine) ValidateModel(declared []string) error {
	return ValidateLabelOrder(declared, e.labels)
}
