package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by huestream.
const (
	MeasurementStreamStats = "stream_stats"
	MeasurementHandshake   = "handshake"
)

// StreamSample is one telemetry snapshot of a running stream.
// Counters are cumulative since the session started.
type StreamSample struct {
	FramesSent    uint64
	FramesFailed  uint64
	FromBuffer    uint64
	FromHeld      uint64
	FromFallback  uint64
	BytesSent     uint64
	BufferDropped uint64
	RateHz        float64
	Lights        int
}

// WriteStreamStats writes a stream statistics snapshot.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - sessionID: Stream session id, stored as the "session" tag
//   - source: Colour source name ("sequence", "capture", "mqtt"), stored as a tag
//   - s: The snapshot
//
// Example:
//
//	client.WriteStreamStats(sessionID, "capture", influxdb.StreamSample{FramesSent: 250, RateHz: 25})
func (c *Client) WriteStreamStats(sessionID, source string, s StreamSample) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(streamStatsPoint(sessionID, source, s, time.Now()))
}

// streamStatsPoint builds the stream_stats point.
func streamStatsPoint(sessionID, source string, s StreamSample, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementStreamStats,
		map[string]string{
			"session": sessionID,
			"source":  source,
		},
		map[string]interface{}{
			"frames_sent":    s.FramesSent,
			"frames_failed":  s.FramesFailed,
			"from_buffer":    s.FromBuffer,
			"from_held":      s.FromHeld,
			"from_fallback":  s.FromFallback,
			"bytes_sent":     s.BytesSent,
			"buffer_dropped": s.BufferDropped,
			"rate_hz":        s.RateHz,
			"lights":         s.Lights,
		},
		ts,
	)
}

// WriteHandshake records the outcome and duration of a bridge handshake.
//
// Parameters:
//   - sessionID: Stream session id
//   - bridge: Bridge host the handshake was made with
//   - took: Time from socket bind to established (or failure)
//   - ok: Whether the handshake succeeded
func (c *Client) WriteHandshake(sessionID, bridge string, took time.Duration, ok bool) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(handshakePoint(sessionID, bridge, took, ok, time.Now()))
}

// handshakePoint builds the handshake point.
func handshakePoint(sessionID, bridge string, took time.Duration, ok bool, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementHandshake,
		map[string]string{
			"session": sessionID,
			"bridge":  bridge,
		},
		map[string]interface{}{
			"duration_ms": took.Milliseconds(),
			"ok":          ok,
		},
		ts,
	)
}
