package batch

import "wifiphoto/pkg/errors"

// Range is an effective download range in the 1-based inclusive indexing the
// vendor server's UI presents to users.
type Range struct {
	Start int
	End   int
}

// Count returns the number of files the range covers
func (r Range) Count() int {
	return r.End - r.Start + 1
}

// Plan validates a requested range against the album's highest file index
// and clamps the end to what is actually available. end <= 0 means "no end
// requested". The CLI boundary guarantees start >= 1 and, when given,
// end >= start.
func Plan(start, end, highest int) (Range, error) {
	if start > highest {
		return Range{}, errors.New(errors.ErrorTypeStartOutOfRange,
			"requested start index %d but highest file index is %d", start, highest)
	}

	effectiveEnd := highest
	if end > 0 && end < highest {
		effectiveEnd = end
	}

	return Range{Start: start, End: effectiveEnd}, nil
}
