package ports

import "context"

// SampleRow is one row of a batch source. Err is set when the row could not
// be parsed; Values is then incomplete and must not be scored.
type SampleRow struct {
	Line   int
	Values map[string]float64
	Err    error
}

// SampleReader reads water samples from a tabular source
type SampleReader interface {
	ReadSamples(ctx context.Context) ([]SampleRow, error)
}
