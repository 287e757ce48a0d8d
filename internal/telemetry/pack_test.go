package telemetry

import (
	"bytes"
	"strings"
	"testing"

	"canardfc/internal/fc"
)

func stateForTest() fc.State {
	return fc.State{
		Pitch:   0.1,
		Roll:    0.2,
		Yaw:     0.3,
		Canards: [4]float64{1.1, 1.2, 1.3, 1.4},
	}
}

func TestPackFloats_AllFit(t *testing.T) {
	values := []float64{0, 1.5, 6.283185, 0.1, 2, 3, 4}
	dst := make([]byte, len(values)*8+1)
	n, err := PackFloats(dst, values, 8, DropSilently)
	if err != nil {
		t.Fatalf("PackFloats: %v", err)
	}
	if n != len(values) {
		t.Fatalf("packed %d want %d", n, len(values))
	}
	if got := string(dst[:8]); got != "0.000000" {
		t.Fatalf("column 0 = %q want %q", got, "0.000000")
	}
	if got := string(dst[8:16]); got != "1.500000" {
		t.Fatalf("column 1 = %q want %q", got, "1.500000")
	}
	if got := string(dst[16:24]); got != "6.283185" {
		t.Fatalf("column 2 = %q want %q", got, "6.283185")
	}
}

func TestPackFloats_SilentTruncation(t *testing.T) {
	// Buffer sized for 5 columns of 7 values: the last 2 are dropped with
	// no error and the tail of the buffer stays untouched.
	values := []float64{1, 2, 3, 4, 5, 6, 7}
	dst := make([]byte, 5*8+1)
	for i := range dst {
		dst[i] = 0xFF
	}

	n, err := PackFloats(dst, values, 8, DropSilently)
	if err != nil {
		t.Fatalf("PackFloats: %v", err)
	}
	if n != 5 {
		t.Fatalf("packed %d want 5", n)
	}
	if dst[40] != 0xFF {
		t.Fatalf("byte past last column was written")
	}
	if got := string(dst[32:40]); got != "5.000000" {
		t.Fatalf("column 4 = %q want %q", got, "5.000000")
	}
}

func TestPackFloats_FailOnOverflow(t *testing.T) {
	values := []float64{1, 2, 3}
	dst := make([]byte, 2*8+1)
	n, err := PackFloats(dst, values, 8, FailOnOverflow)
	if err == nil {
		t.Fatalf("expected overflow error")
	}
	if n != 2 {
		t.Fatalf("packed %d want 2", n)
	}
}

func TestPackFloats_TruncatesLongColumn(t *testing.T) {
	dst := make([]byte, 9)
	n, err := PackFloats(dst, []float64{-123.456789}, 8, DropSilently)
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if got := string(dst[:8]); got != "-123.456" {
		t.Fatalf("column = %q want %q", got, "-123.456")
	}
}

func TestPackFloats_PadsShortColumn(t *testing.T) {
	dst := make([]byte, 13)
	n, err := PackFloats(dst, []float64{1.5}, 12, DropSilently)
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	if got := string(dst[:12]); got != "1.500000    " {
		t.Fatalf("column = %q", got)
	}
}

func TestPackFloats_InvalidWidth(t *testing.T) {
	if _, err := PackFloats(make([]byte, 8), []float64{1}, 0, DropSilently); err == nil {
		t.Fatalf("expected error for width 0")
	}
}

type captureWriter struct {
	bytes.Buffer
	closed bool
}

func (c *captureWriter) Close() error {
	c.closed = true
	return nil
}

func TestSink_EmitLineFormat(t *testing.T) {
	w := &captureWriter{}
	s := NewSink(w, 8, DropSilently)

	err := s.Emit(stateForTest())
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	line := w.String()
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("line not newline terminated: %q", line)
	}
	body := strings.TrimSuffix(line, "\n")
	if len(body) != 7*8 {
		t.Fatalf("line body %d bytes want %d: %q", len(body), 7*8, body)
	}
	if got := body[:8]; got != "0.100000" {
		t.Fatalf("pitch column = %q", got)
	}
	if got := body[48:56]; got != "1.400000" {
		t.Fatalf("canard 4 column = %q", got)
	}
}

func TestSink_Close(t *testing.T) {
	w := &captureWriter{}
	s := NewSink(w, 0, DropSilently)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !w.closed {
		t.Fatalf("underlying writer not closed")
	}
}
