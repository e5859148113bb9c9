package codec

import (
	"testing"

	"github.com/replikativ/konserve-lmdb/lib/buffer"
)

// benchmarkValues returns a set of values for targeted benchmarking
func benchmarkValues() map[string]any {
	return map[string]any{
		"Nil":    nil,
		"Int64":  int64(123456789),
		"String": "medium length value for testing serialization",
		"Keyword": Keyword(
			"some-namespace/some-name"),
		"SmallBytes": []byte("v"),
		"LargeBytes": make([]byte, 16*1024), // 16KB of data
		"List": List{
			int64(1), "two", Keyword("three"), 4.0,
		},
		"Map": Map{
			Keyword("host"): "localhost",
			Keyword("port"): int64(5432),
			Keyword("tags"): List{"a", "b"},
		},
		"Int64Array": func() []int64 {
			a := make([]int64, 1024)
			for i := range a {
				a[i] = int64(i)
			}
			return a
		}(),
	}
}

func BenchmarkEncode(b *testing.B) {
	pool := buffer.NewPool()
	for name, v := range benchmarkValues() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Encode(pool, nil, v); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	pool := buffer.NewPool()
	for name, v := range benchmarkValues() {
		data, err := Encode(pool, nil, v)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Decode(nil, data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecodeMeta(b *testing.B) {
	pool := buffer.NewPool()

	// record with a large value field: the projection must not pay for it
	large := make([]byte, 64*1024)
	data, err := EncodeWith(pool, nil, func(e *Encoder) error {
		if err := e.WriteMapHeader(2); err != nil {
			return err
		}
		if err := e.Encode(Symbol("meta")); err != nil {
			return err
		}
		if err := e.Encode(Map{Keyword("type"): Keyword("binary")}); err != nil {
			return err
		}
		if err := e.Encode(Symbol("value")); err != nil {
			return err
		}
		return e.Encode(large)
	})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := DecodeMeta(nil, data); err != nil {
			b.Fatal(err)
		}
	}
}
