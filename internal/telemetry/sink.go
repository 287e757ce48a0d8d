package telemetry

import (
	"io"

	"canardfc/internal/fc"
)

// Sink streams the flight state as one fixed-width text line per iteration:
// pitch, roll, yaw, then the four canard rotations, newline terminated.
// No handshake and no acknowledgment; the receiver resynchronizes on
// line breaks.
type Sink struct {
	w     io.WriteCloser
	width int
	pol   OverflowPolicy
}

func NewSink(w io.WriteCloser, width int, pol OverflowPolicy) *Sink {
	if width <= 0 {
		width = DefaultFloatWidth
	}
	return &Sink{w: w, width: width, pol: pol}
}

func (s *Sink) Emit(st fc.State) error {
	values := []float64{
		st.Pitch,
		st.Roll,
		st.Yaw,
		st.Canards[0],
		st.Canards[1],
		st.Canards[2],
		st.Canards[3],
	}

	buf := make([]byte, len(values)*s.width+1)
	n, err := PackFloats(buf, values, s.width, s.pol)
	if err != nil {
		return err
	}
	line := buf[:n*s.width]
	line = append(line, '\n')
	_, err = s.w.Write(line)
	return err
}

func (s *Sink) Close() error {
	if s == nil || s.w == nil {
		return nil
	}
	return s.w.Close()
}
