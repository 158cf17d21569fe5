// Package capture turns audio sample blocks into colour elements.
//
// The audio subsystem is an external collaborator: it delivers
// de-interleaved blocks of float32 samples (one slice per channel) from its
// own goroutine or thread through the Handler interface. Analyzer is the
// Handler that computes per-block loudness statistics on channel 0 and
// writes one hue colour element per block into a ring buffer, which the
// stream loop consumes.
//
// PCMReader is a capture source that needs no audio library: it reads raw
// interleaved little-endian float32 PCM from a file or named pipe, such as
// the output of
//
//	parec --format=float32le --channels=2 > /tmp/huestream.pcm
//
// and delivers fixed-size blocks to a Handler.
//
// # Mapping
//
// The RMS of each block, multiplied by Gain, becomes the brightness. The hue
// advances by HueStep degrees per block so sustained sound cycles through
// the colour wheel.
package capture
