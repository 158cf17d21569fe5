package main

import (
	"context"
	"time"

	"github.com/nerrad567/huestream/internal/infrastructure/influxdb"
	"github.com/nerrad567/huestream/internal/infrastructure/logging"
	"github.com/nerrad567/huestream/internal/infrastructure/mqtt"
	"github.com/nerrad567/huestream/internal/ringbuf"
	"github.com/nerrad567/huestream/internal/securechannel"
	"github.com/nerrad567/huestream/internal/stream"
)

// statsSnapshot is the JSON body published to {prefix}/stats.
type statsSnapshot struct {
	SessionID     string    `json:"session_id"`
	Source        string    `json:"source"`
	FramesSent    uint64    `json:"frames_sent"`
	FramesFailed  uint64    `json:"frames_failed"`
	FromBuffer    uint64    `json:"from_buffer"`
	FromHeld      uint64    `json:"from_held"`
	FromFallback  uint64    `json:"from_fallback"`
	BytesSent     uint64    `json:"bytes_sent"`
	BufferIn      uint64    `json:"buffer_in"`
	BufferDropped uint64    `json:"buffer_dropped"`
	RateHz        float64   `json:"rate_hz"`
	Lights        int       `json:"lights"`
	LastError     string    `json:"last_error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// buildSnapshot merges counters from the loop, channel and buffer.
func buildSnapshot(sessionID, source string, rate float64, lights int, ls stream.Stats, cs securechannel.Stats, bs ringbuf.SharedStats, now time.Time) statsSnapshot {
	return statsSnapshot{
		SessionID:     sessionID,
		Source:        source,
		FramesSent:    ls.FramesSent,
		FramesFailed:  ls.FramesFailed,
		FromBuffer:    ls.FromBuffer,
		FromHeld:      ls.FromHeld,
		FromFallback:  ls.FromFallback,
		BytesSent:     cs.BytesSent,
		BufferIn:      bs.ElementsIn,
		BufferDropped: bs.Dropped,
		RateHz:        rate,
		Lights:        lights,
		LastError:     ls.LastError,
		Timestamp:     now.UTC(),
	}
}

// sample converts a snapshot to an InfluxDB sample.
func (s statsSnapshot) sample() influxdb.StreamSample {
	return influxdb.StreamSample{
		FramesSent:    s.FramesSent,
		FramesFailed:  s.FramesFailed,
		FromBuffer:    s.FromBuffer,
		FromHeld:      s.FromHeld,
		FromFallback:  s.FromFallback,
		BytesSent:     s.BytesSent,
		BufferDropped: s.BufferDropped,
		RateHz:        s.RateHz,
		Lights:        s.Lights,
	}
}

// statsReporter periodically logs and publishes stream statistics.
// The MQTT and InfluxDB clients are optional.
type statsReporter struct {
	sessionID string
	source    string
	rate      float64
	lights    int

	loop    *stream.Loop
	channel *securechannel.Channel
	buf     *ringbuf.Shared

	mqtt   *mqtt.Client
	influx *influxdb.Client
	log    *logging.Logger
}

// run reports every interval until ctx is cancelled. A non-positive
// interval disables periodic reports.
func (r *statsReporter) run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

// report takes one snapshot and sends it to every configured sink.
func (r *statsReporter) report() {
	snap := buildSnapshot(r.sessionID, r.source, r.rate, r.lights,
		r.loop.Stats(), r.channel.Stats(), r.buf.Stats(), time.Now())

	r.log.Info("stream stats",
		"frames_sent", snap.FramesSent,
		"frames_failed", snap.FramesFailed,
		"from_buffer", snap.FromBuffer,
		"from_held", snap.FromHeld,
		"from_fallback", snap.FromFallback,
		"buffer_dropped", snap.BufferDropped,
	)

	if r.mqtt != nil && r.mqtt.IsConnected() {
		if err := r.mqtt.PublishStats(snap); err != nil {
			r.log.Warn("publishing stats", "error", err)
		}
	}
	if r.influx != nil {
		r.influx.WriteStreamStats(r.sessionID, r.source, snap.sample())
	}
}
