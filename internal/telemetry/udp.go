package telemetry

import (
	"fmt"
	"net"
)

// NewUDPSink returns a Sink sending each state line as one datagram to dest
// (host:port). Useful for ground-station bring-up when no serial adapter is
// wired; the line format is identical to the serial link.
func NewUDPSink(dest string, width int, pol OverflowPolicy) (*Sink, error) {
	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resolve %s: %w", dest, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial udp %s: %w", dest, err)
	}
	return NewSink(conn, width, pol), nil
}
