package ringbuf

import "testing"

func BenchmarkWrite_Block(b *testing.B) {
	buf, _ := New(6, 256)
	block := make([]byte, 6*64)
	for i := 0; i < b.N; i++ {
		buf.Write(block)
	}
}

func BenchmarkWriteRead(b *testing.B) {
	buf, _ := New(6, 256)
	element := make([]byte, 6)
	dest := make([]byte, 6)
	for i := 0; i < b.N; i++ {
		buf.Write(element)
		buf.Read(dest) //nolint:errcheck // benchmark
	}
}
