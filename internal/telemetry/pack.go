package telemetry

import (
	"fmt"
	"strconv"
)

// DefaultFloatWidth is the column width the simulator expects.
const DefaultFloatWidth = 8

// OverflowPolicy decides what happens when the destination buffer cannot
// hold the next full-width column.
type OverflowPolicy int

const (
	// DropSilently stops packing and reports success for whatever fit.
	// This matches the flight firmware and is the default: the simulator
	// link is fire-and-forget and a short line beats no line.
	DropSilently OverflowPolicy = iota
	// FailOnOverflow returns an error naming the first dropped value.
	FailOnOverflow
)

// PackFloats renders values into dst as fixed-width columns with no
// separator, returning how many values were packed.
//
// A column is only written while at least width bytes remain in dst.
// Callers sizing dst as width*len(values)+1 (one spare byte for a line
// terminator) always get every value.
func PackFloats(dst []byte, values []float64, width int, pol OverflowPolicy) (int, error) {
	if width <= 0 {
		return 0, fmt.Errorf("telemetry: invalid column width %d", width)
	}

	rem := len(dst)
	n := 0
	for i, v := range values {
		if rem < width {
			if pol == FailOnOverflow {
				return n, fmt.Errorf("telemetry: value %d of %d dropped (buffer %d bytes, width %d)", i+1, len(values), len(dst), width)
			}
			return n, nil
		}
		packColumn(dst[n*width:(n+1)*width], v)
		n++
		rem -= width
	}
	return n, nil
}

// packColumn writes v into exactly len(col) bytes: six decimal places,
// truncated on the right if too long, space-padded if too short.
func packColumn(col []byte, v float64) {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	if len(s) > len(col) {
		s = s[:len(col)]
	}
	copy(col, s)
	for i := len(s); i < len(col); i++ {
		col[i] = ' '
	}
}
