package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/huestream/internal/hue"
)

// recordingSender decodes and keeps every frame.
type recordingSender struct {
	t       *testing.T
	frames  []hue.ColorCommand
	fail    func(n int) bool
	onFrame func(n int)
}

func (s *recordingSender) Send(frame []byte) error {
	n := len(s.frames)
	cmd, err := hue.Decode(frame)
	if err != nil {
		s.t.Fatalf("sent undecodable frame: %v", err)
	}
	s.frames = append(s.frames, cmd)
	if s.onFrame != nil {
		s.onFrame(n + 1)
	}
	if s.fail != nil && s.fail(n) {
		return errors.New("transmit failed")
	}
	return nil
}

// listSource returns colours in order, repeating the last.
type listSource struct {
	colors []hue.Color
	calls  int
}

func (s *listSource) Next() Sample {
	i := s.calls
	if i >= len(s.colors) {
		i = len(s.colors) - 1
	}
	s.calls++
	return Sample{Color: s.colors[i], Origin: OriginBuffer}
}

func newTestLoop(t *testing.T, cfg Config, source Source, sender Sender) (*Loop, *fakeClock) {
	t.Helper()
	l, err := New(cfg, source, sender)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	clock := newFakeClock()
	l.SetClock(clock)
	return l, clock
}

func TestLoop_DurationExpiry(t *testing.T) {
	sender := &recordingSender{t: t}
	l, clock := newTestLoop(t, Config{
		Rate:     10,
		Duration: time.Second,
		Lights:   []uint16{1, 2},
	}, &listSource{colors: []hue.Color{hue.Red}}, sender)
	start := clock.Now()

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sender.frames) != 10 {
		t.Errorf("sent %d frames, want 10", len(sender.frames))
	}
	if elapsed := clock.Now().Sub(start); elapsed != time.Second {
		t.Errorf("elapsed = %v, want 1s", elapsed)
	}
	for i, f := range sender.frames {
		if f.Sequence != uint8(i) {
			t.Errorf("frame %d sequence = %d", i, f.Sequence)
		}
		if len(f.Lights) != 2 || f.Lights[0].ID != 1 || f.Lights[1].ID != 2 {
			t.Fatalf("frame %d lights = %+v", i, f.Lights)
		}
		if f.Lights[0].Color != hue.Red {
			t.Errorf("frame %d colour = %v, want red", i, f.Lights[0].Color)
		}
	}
	if stats := l.Stats(); stats.FramesSent != 10 || stats.FromBuffer != 10 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestLoop_Supersample(t *testing.T) {
	a := hue.Color{X: 0, Y: 0, Brightness: 0}
	b := hue.Color{X: 1000, Y: 2000, Brightness: 4000}

	sender := &recordingSender{t: t}
	l, _ := newTestLoop(t, Config{
		Rate:        5,
		Supersample: 4,
		Duration:    400 * time.Millisecond,
		Lights:      []uint16{7},
	}, &listSource{colors: []hue.Color{a, b}}, sender)

	if got := l.FrameInterval(); got != 50*time.Millisecond {
		t.Fatalf("FrameInterval() = %v, want 50ms", got)
	}
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []hue.Color{
		a, a, a, a,
		{X: 250, Y: 500, Brightness: 1000},
		{X: 500, Y: 1000, Brightness: 2000},
		{X: 750, Y: 1500, Brightness: 3000},
		b,
	}
	if len(sender.frames) != len(want) {
		t.Fatalf("sent %d frames, want %d", len(sender.frames), len(want))
	}
	for i, w := range want {
		if got := sender.frames[i].Lights[0].Color; got != w {
			t.Errorf("frame %d colour = %+v, want %+v", i, got, w)
		}
	}
}

func TestLoop_SendFailuresAreCounted(t *testing.T) {
	sender := &recordingSender{t: t, fail: func(n int) bool { return n%2 == 1 }}
	l, _ := newTestLoop(t, Config{
		Rate:     20,
		Duration: time.Second,
		Lights:   []uint16{1},
	}, &listSource{colors: []hue.Color{hue.Green}}, sender)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil despite send failures", err)
	}

	stats := l.Stats()
	if stats.FramesSent != 10 || stats.FramesFailed != 10 {
		t.Errorf("Stats() sent/failed = %d/%d, want 10/10", stats.FramesSent, stats.FramesFailed)
	}
	if stats.LastError != "transmit failed" || stats.LastErrorTime.IsZero() {
		t.Errorf("Stats() last error = %q at %v", stats.LastError, stats.LastErrorTime)
	}
}

func TestLoop_Stop(t *testing.T) {
	sender := &recordingSender{t: t}
	l, _ := newTestLoop(t, Config{Rate: 25, Lights: []uint16{1}},
		&listSource{colors: []hue.Color{hue.Orange}}, sender)
	sender.onFrame = func(n int) {
		if n == 5 {
			l.Stop()
			l.Stop()
		}
	}

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sender.frames) != 5 {
		t.Errorf("sent %d frames, want 5", len(sender.frames))
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &recordingSender{t: t}
	sender.onFrame = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	l, _ := newTestLoop(t, Config{Rate: 25, Lights: []uint16{1}},
		&listSource{colors: []hue.Color{hue.Orange}}, sender)

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sender.frames) != 3 {
		t.Errorf("sent %d frames, want 3", len(sender.frames))
	}
}

func TestLoop_RealClockCancel(t *testing.T) {
	l, err := New(Config{Rate: 25, Lights: []uint16{1}},
		&listSource{colors: []hue.Color{hue.Red}}, &recordingSender{t: t})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
	if l.Stats().FramesSent == 0 {
		t.Error("no frames sent")
	}
}

func TestLoop_Brightness(t *testing.T) {
	sender := &recordingSender{t: t}
	l, _ := newTestLoop(t, Config{
		Rate:       10,
		Duration:   100 * time.Millisecond,
		Lights:     []uint16{1},
		Brightness: 0.5,
	}, &listSource{colors: []hue.Color{hue.Red}}, sender)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := sender.frames[0].Lights[0].Color
	if got.X != hue.Red.X || got.Y != hue.Red.Y || got.Brightness != 32768 {
		t.Errorf("colour = %+v, want red at half brightness", got)
	}
}

func TestNew_Validation(t *testing.T) {
	src := &listSource{colors: []hue.Color{hue.Red}}
	sender := &recordingSender{t: t}

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no lights", cfg: Config{}},
		{name: "too many lights", cfg: Config{Lights: make([]uint16, hue.MaxLights+1)}},
		{name: "negative rate", cfg: Config{Rate: -1, Lights: []uint16{1}}},
		{name: "output rate too high", cfg: Config{Rate: 30, Supersample: 3, Lights: []uint16{1}}},
		{name: "negative supersample", cfg: Config{Supersample: -2, Lights: []uint16{1}}},
		{name: "negative duration", cfg: Config{Duration: -time.Second, Lights: []uint16{1}}},
		{name: "brightness above one", cfg: Config{Brightness: 1.5, Lights: []uint16{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, src, sender); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := New(Config{Lights: []uint16{1}}, nil, sender); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(nil source) error = %v, want ErrInvalidConfig", err)
	}
}

func TestNew_MaxLightsAccepted(t *testing.T) {
	ids := make([]uint16, hue.MaxLights)
	for i := range ids {
		ids[i] = uint16(i + 1)
	}
	if _, err := New(Config{Lights: ids}, &listSource{colors: []hue.Color{hue.Red}}, &recordingSender{t: t}); err != nil {
		t.Errorf("New() with %d lights error = %v", hue.MaxLights, err)
	}
}
