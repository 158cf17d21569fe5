// Package stream paces entertainment frames to the bridge.
//
// A Loop pulls one colour per logical update from a Source, encodes a frame
// for every configured light and hands it to a Sender, then waits for the
// rest of the frame interval. With supersampling (Config.Supersample > 1)
// each logical update is split into N frames that interpolate linearly from
// the previous colour to the new one, giving smoother transitions at N times
// the output rate.
//
// # Timing
//
// The wait between frames is a fixed interval; drift from slow sends is not
// compensated. Stopping is cooperative: the loop exits when the context is
// cancelled, Stop is called or the configured duration elapses. A send that
// is in progress is never interrupted.
//
// # Sources
//
// BufferSource reads the newest colour from a ring buffer written by a
// producer goroutine. Until the producer has written anything it delegates
// to a fallback Source; once data has flowed, an empty buffer repeats the
// last colour. SequenceSource is the deterministic fallback that cycles
// through a fixed colour list.
//
// # Errors
//
// Send failures are counted and logged, and the frame is dropped. The loop
// keeps running since the stream tolerates loss. Run only returns an error
// for invalid configuration.
package stream
