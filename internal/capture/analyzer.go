package capture

import (
	"math"
	"sync"

	"github.com/nerrad567/huestream/internal/hue"
)

// Handler receives de-interleaved sample blocks.
//
// samples[c][i] is sample i of channel c; every channel has the same length.
// Process is called from the capture goroutine and must not block.
type Handler interface {
	Process(samples [][]float32)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(samples [][]float32)

// Process calls f(samples).
func (f HandlerFunc) Process(samples [][]float32) { f(samples) }

// ElementWriter accepts fixed-size elements; *ringbuf.Shared implements it.
type ElementWriter interface {
	Write(p []byte) int
}

// Analyzer defaults.
const (
	DefaultGain    = 4.0
	DefaultHueStep = 2.0
)

// BlockStats are the loudness statistics of one block on channel 0.
type BlockStats struct {
	Samples int
	Mean    float64
	Min     float64
	Max     float64
	RMS     float64
}

// AnalyzerConfig holds mapping settings.
type AnalyzerConfig struct {
	// Gain scales RMS to brightness (default DefaultGain).
	Gain float64

	// HueStep is the hue advance per block in degrees (default
	// DefaultHueStep).
	HueStep float64

	// Saturation of the produced colours in [0, 1] (default 1).
	Saturation float64
}

// Analyzer maps sample blocks to colours.
//
// Thread Safety:
//   - Process is called from one producer goroutine.
//   - Last and Blocks are safe from any goroutine.
type Analyzer struct {
	out ElementWriter
	cfg AnalyzerConfig

	hue     float64
	element []byte

	mu     sync.Mutex
	last   BlockStats
	blocks uint64
}

// NewAnalyzer creates an analyser writing colour elements to out.
func NewAnalyzer(out ElementWriter, cfg AnalyzerConfig) *Analyzer {
	if cfg.Gain <= 0 {
		cfg.Gain = DefaultGain
	}
	if cfg.HueStep == 0 {
		cfg.HueStep = DefaultHueStep
	}
	if cfg.Saturation <= 0 || cfg.Saturation > 1 {
		cfg.Saturation = 1
	}
	return &Analyzer{
		out:     out,
		cfg:     cfg,
		element: make([]byte, 0, hue.ElementSize),
	}
}

// Process analyses channel 0 of one block and writes one colour element.
// Empty blocks are ignored.
func (a *Analyzer) Process(samples [][]float32) {
	if len(samples) == 0 || len(samples[0]) == 0 {
		return
	}
	stats := Analyze(samples[0])

	c := hue.FromHSV(a.hue, a.cfg.Saturation, stats.RMS*a.cfg.Gain)
	a.hue = math.Mod(a.hue+a.cfg.HueStep, 360)

	a.element = c.AppendElement(a.element[:0])
	a.out.Write(a.element)

	a.mu.Lock()
	a.last = stats
	a.blocks++
	a.mu.Unlock()
}

// Last returns the statistics of the most recent block.
func (a *Analyzer) Last() BlockStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Blocks returns the number of blocks processed.
func (a *Analyzer) Blocks() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blocks
}

// Analyze computes loudness statistics of one channel.
func Analyze(samples []float32) BlockStats {
	if len(samples) == 0 {
		return BlockStats{}
	}
	s := BlockStats{
		Samples: len(samples),
		Min:     math.Inf(1),
		Max:     math.Inf(-1),
	}
	var sum, sumSquares float64
	for _, v := range samples {
		f := float64(v)
		sum += f
		sumSquares += f * f
		s.Min = math.Min(s.Min, f)
		s.Max = math.Max(s.Max, f)
	}
	n := float64(len(samples))
	s.Mean = sum / n
	s.RMS = math.Sqrt(sumSquares / n)
	return s
}
