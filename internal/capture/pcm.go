package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"time"
)

// Logger is the logging interface used by the reader.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

const bytesPerSample = 4

// PCMReader delivers blocks of interleaved float32le PCM to a Handler.
type PCMReader struct {
	r         io.ReadCloser
	name      string
	channels  int
	blockSize int
	pace      time.Duration
	logger    Logger

	raw    []byte
	blocks [][]float32
}

// OpenPCM opens a PCM file or named pipe.
//
// A regular file is read at the capture rate, one block every
// blockSize/sampleRate seconds. A FIFO is read as fast as the writer
// produces samples.
//
// Parameters:
//   - path: File or FIFO with interleaved float32 little-endian samples
//   - channels: Interleaved channel count
//   - blockSize: Samples per channel per delivered block
//   - sampleRate: Samples per second per channel
//
// Returns:
//   - *PCMReader: Reader ready to Run
//   - error: ErrDeviceNotFound if path does not exist, ErrInvalidFormat
func OpenPCM(path string, channels, blockSize, sampleRate int) (*PCMReader, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("%w: sample_rate=%d", ErrInvalidFormat, sampleRate)
	}
	if channels < 1 || blockSize < 1 {
		return nil, fmt.Errorf("%w: channels=%d block_size=%d", ErrInvalidFormat, channels, blockSize)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
		}
		return nil, fmt.Errorf("capture: opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: stat %s: %w", path, err)
	}
	r, err := NewPCMReader(f, path, channels, blockSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Mode().IsRegular() {
		r.pace = time.Duration(blockSize) * time.Second / time.Duration(sampleRate)
	}
	return r, nil
}

// NewPCMReader wraps an already open stream.
func NewPCMReader(r io.ReadCloser, name string, channels, blockSize int) (*PCMReader, error) {
	if channels < 1 || blockSize < 1 {
		return nil, fmt.Errorf("%w: channels=%d block_size=%d", ErrInvalidFormat, channels, blockSize)
	}
	blocks := make([][]float32, channels)
	for c := range blocks {
		blocks[c] = make([]float32, blockSize)
	}
	return &PCMReader{
		r:         r,
		name:      name,
		channels:  channels,
		blockSize: blockSize,
		logger:    noopLogger{},
		raw:       make([]byte, channels*blockSize*bytesPerSample),
		blocks:    blocks,
	}, nil
}

// SetLogger sets the logger. Nil disables logging.
func (p *PCMReader) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// Run reads blocks until end of stream or ctx is cancelled and passes each
// to h. The slices handed to h are reused for the next block.
// Run closes the underlying stream before returning.
//
// Returns:
//   - error: nil at end of stream or on cancellation, read errors otherwise
func (p *PCMReader) Run(ctx context.Context, h Handler) error {
	// Closing the stream unblocks a pending read on a pipe.
	stop := context.AfterFunc(ctx, func() { p.r.Close() })
	defer func() {
		if stop() {
			p.r.Close()
		}
	}()

	p.logger.Info("pcm capture started", "source", p.name, "channels", p.channels,
		"block_size", p.blockSize, "pace", p.pace)

	var tick <-chan time.Time
	if p.pace > 0 {
		ticker := time.NewTicker(p.pace)
		defer ticker.Stop()
		tick = ticker.C
	}

	var delivered uint64
	for {
		if tick != nil && delivered > 0 {
			select {
			case <-tick:
			case <-ctx.Done():
				p.logger.Info("pcm capture stopped", "source", p.name, "blocks", delivered)
				return nil
			}
		}
		if _, err := io.ReadFull(p.r, p.raw); err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				p.logger.Info("pcm capture stopped", "source", p.name, "blocks", delivered)
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				p.logger.Debug("partial trailing block discarded", "source", p.name)
				p.logger.Info("pcm capture stopped", "source", p.name, "blocks", delivered)
				return nil
			}
			return fmt.Errorf("capture: reading %s: %w", p.name, err)
		}
		p.deinterleave()
		h.Process(p.blocks)
		delivered++
	}
}

func (p *PCMReader) deinterleave() {
	for i := 0; i < p.blockSize; i++ {
		for c := 0; c < p.channels; c++ {
			off := (i*p.channels + c) * bytesPerSample
			p.blocks[c][i] = math.Float32frombits(binary.LittleEndian.Uint32(p.raw[off:]))
		}
	}
}
