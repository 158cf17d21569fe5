package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/huestream/internal/hue"
)

// Defaults.
const (
	// DefaultRate is the logical update rate in Hz.
	DefaultRate = 25.0

	// MaxRate is the highest accepted output rate (Rate * Supersample).
	MaxRate = 60.0
)

// Sender carries encoded frames to the bridge.
type Sender interface {
	Send(frame []byte) error
}

// Logger is the logging interface used by the loop.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Config holds loop settings.
type Config struct {
	// Rate is the logical colour update rate in Hz (default DefaultRate).
	Rate float64

	// Duration bounds the run. Zero runs until cancelled.
	Duration time.Duration

	// Supersample is the number of interpolated frames per logical update
	// (default 1).
	Supersample int

	// Lights are the light ids to address, 1 to hue.MaxLights of them.
	Lights []uint16

	// Brightness scales every colour, in (0, 1] (default 1).
	Brightness float64
}

func (c *Config) applyDefaults() {
	if c.Rate == 0 {
		c.Rate = DefaultRate
	}
	if c.Supersample == 0 {
		c.Supersample = 1
	}
	if c.Brightness == 0 {
		c.Brightness = 1
	}
}

// Validate reports configuration problems.
func (c Config) Validate() error {
	switch {
	case c.Rate <= 0:
		return fmt.Errorf("%w: rate must be positive", ErrInvalidConfig)
	case c.Supersample < 1:
		return fmt.Errorf("%w: supersample must be at least 1", ErrInvalidConfig)
	case c.Rate*float64(c.Supersample) > MaxRate:
		return fmt.Errorf("%w: output rate %.1f Hz exceeds %.0f Hz", ErrInvalidConfig,
			c.Rate*float64(c.Supersample), MaxRate)
	case c.Duration < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	case len(c.Lights) == 0:
		return fmt.Errorf("%w: at least one light is required", ErrInvalidConfig)
	case len(c.Lights) > hue.MaxLights:
		return fmt.Errorf("%w: at most %d lights, got %d", ErrInvalidConfig, hue.MaxLights, len(c.Lights))
	case c.Brightness <= 0 || c.Brightness > 1:
		return fmt.Errorf("%w: brightness must be in (0, 1]", ErrInvalidConfig)
	}
	return nil
}

// Stats is a snapshot of loop counters.
type Stats struct {
	FramesSent    uint64
	FramesFailed  uint64
	FromBuffer    uint64
	FromHeld      uint64
	FromFallback  uint64
	LastError     string
	LastErrorTime time.Time
}

// Loop drives frames at a fixed cadence.
//
// Thread Safety:
//   - Run must be called from one goroutine at a time.
//   - Stop and Stats are safe from any goroutine.
type Loop struct {
	cfg     Config
	source  Source
	sender  Sender
	encoder *hue.Encoder
	clock   Clock
	logger  Logger

	running  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}

	lights []hue.LightColor
	frame  []byte

	// Statistics
	framesSent   atomic.Uint64
	framesFailed atomic.Uint64
	fromBuffer   atomic.Uint64
	fromHeld     atomic.Uint64
	fromFallback atomic.Uint64

	errMu         sync.Mutex
	lastError     error
	lastErrorTime time.Time
}

// New creates a loop.
//
// Parameters:
//   - cfg: Loop settings; zero fields take defaults
//   - source: Colour source
//   - sender: Frame sink, usually a *securechannel.Channel
//
// Returns:
//   - *Loop: Ready to Run
//   - error: ErrInvalidConfig
func New(cfg Config, source Source, sender Sender) (*Loop, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil || sender == nil {
		return nil, fmt.Errorf("%w: source and sender are required", ErrInvalidConfig)
	}

	lights := make([]hue.LightColor, len(cfg.Lights))
	for i, id := range cfg.Lights {
		lights[i].ID = id
	}

	return &Loop{
		cfg:     cfg,
		source:  source,
		sender:  sender,
		encoder: hue.NewEncoder(),
		clock:   SystemClock(),
		logger:  noopLogger{},
		stopCh:  make(chan struct{}),
		lights:  lights,
		frame:   make([]byte, 0, hue.MaxFrameSize),
	}, nil
}

// SetLogger sets the logger. Nil disables logging.
func (l *Loop) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	l.logger = logger
}

// SetClock replaces the clock. Must be called before Run.
func (l *Loop) SetClock(clock Clock) {
	if clock != nil {
		l.clock = clock
	}
}

// FrameInterval returns the wait between two output frames.
func (l *Loop) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / (l.cfg.Rate * float64(l.cfg.Supersample)))
}

// Run streams frames until ctx is cancelled, Stop is called or the
// configured duration elapses. All three return nil.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	interval := l.FrameInterval()
	steps := l.cfg.Supersample
	start := l.clock.Now()

	l.logger.Info("stream started",
		"rate_hz", l.cfg.Rate,
		"supersample", steps,
		"frame_interval", interval,
		"lights", len(l.lights),
		"duration", l.cfg.Duration,
	)

	var prev hue.Color
	first := true
	for {
		if l.finished(ctx, start) {
			l.logStopped(start)
			return nil
		}

		sample := l.source.Next()
		l.countOrigin(sample.Origin)
		next := sample.Color
		if first {
			prev, first = next, false
		}

		for i := 1; i <= steps; i++ {
			c := next
			if steps > 1 {
				c = hue.Lerp(prev, next, float64(i)/float64(steps))
			}
			l.send(c)

			if !l.wait(ctx, interval) || l.finished(ctx, start) {
				l.logStopped(start)
				return nil
			}
		}
		prev = next
	}
}

// Stop ends Run at the next frame boundary. Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Loop) finished(ctx context.Context, start time.Time) bool {
	select {
	case <-ctx.Done():
		return true
	case <-l.stopCh:
		return true
	default:
	}
	return l.cfg.Duration > 0 && l.clock.Now().Sub(start) >= l.cfg.Duration
}

// wait sleeps for d and reports false if interrupted.
func (l *Loop) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-l.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	case <-l.stopCh:
		return false
	}
}

func (l *Loop) send(c hue.Color) {
	if l.cfg.Brightness < 1 {
		_, _, b := c.XYFloat()
		c = c.WithBrightness(b * l.cfg.Brightness)
	}
	for i := range l.lights {
		l.lights[i].Color = c
	}
	l.frame = l.encoder.AppendFrame(l.frame[:0], hue.ColorCommand{Lights: l.lights})

	if err := l.sender.Send(l.frame); err != nil {
		failed := l.framesFailed.Add(1)
		l.recordError(err)
		// Warn on the first failure and every 100th after that.
		if failed == 1 || failed%100 == 0 {
			l.logger.Warn("frame dropped", "error", err, "frames_failed", failed)
		} else {
			l.logger.Debug("frame dropped", "error", err)
		}
		return
	}
	l.framesSent.Add(1)
}

func (l *Loop) countOrigin(o Origin) {
	switch o {
	case OriginBuffer:
		l.fromBuffer.Add(1)
	case OriginHeld:
		l.fromHeld.Add(1)
	default:
		l.fromFallback.Add(1)
	}
}

func (l *Loop) recordError(err error) {
	l.errMu.Lock()
	l.lastError = err
	l.lastErrorTime = l.clock.Now()
	l.errMu.Unlock()
}

func (l *Loop) logStopped(start time.Time) {
	l.logger.Info("stream stopped",
		"elapsed", l.clock.Now().Sub(start),
		"frames_sent", l.framesSent.Load(),
		"frames_failed", l.framesFailed.Load(),
	)
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	s := Stats{
		FramesSent:   l.framesSent.Load(),
		FramesFailed: l.framesFailed.Load(),
		FromBuffer:   l.fromBuffer.Load(),
		FromHeld:     l.fromHeld.Load(),
		FromFallback: l.fromFallback.Load(),
	}
	l.errMu.Lock()
	if l.lastError != nil {
		s.LastError = l.lastError.Error()
		s.LastErrorTime = l.lastErrorTime
	}
	l.errMu.Unlock()
	return s
}
