package hue

import "testing"

func BenchmarkAppendFrame(b *testing.B) {
	enc := NewEncoder()
	cmd := Uniform([]uint16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, Orange)
	buf := make([]byte, 0, MaxFrameSize)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = enc.AppendFrame(buf[:0], cmd)
	}
}

func BenchmarkDecode(b *testing.B) {
	frame := NewEncoder().Encode(Uniform([]uint16{0, 1, 2, 3, 4}, Green))
	for i := 0; i < b.N; i++ {
		_, _ = Decode(frame)
	}
}
