package serialization

import "fmt"

// ValidateRecord checks that a record is internally consistent.
func ValidateRecord(r *WeightsRecord) error {
	if r.Configuration == "" {
		return &ValidationError{Type: "missing_field", Field: "configuration", Details: "empty name"}
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"kernel_rows", r.KernelRows},
		{"kernel_cols", r.KernelCols},
		{"output_channels", r.OutputChannels},
		{"input_channels", r.InputChannels},
		{"coefficients", r.Coefficients},
	} {
		if f.value <= 0 {
			return &ValidationError{Type: "invalid_dimension", Field: f.name, Details: fmt.Sprintf("got %d (must be > 0)", f.value)}
		}
	}

	want := r.Coefficients * r.InputChannels * r.OutputChannels
	if want > MaxValues {
		return fmt.Errorf("%w: %d, max %d", ErrTooManyValues, want, MaxValues)
	}
	if len(r.Values) != want {
		return &ValidationError{
			Type:    "size_mismatch",
			Field:   "values",
			Details: fmt.Sprintf("got %d values, %d coefficients x %d x %d needs %d", len(r.Values), r.Coefficients, r.InputChannels, r.OutputChannels, want),
		}
	}
	return nil
}
