package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/replikativ/konserve-lmdb/lib/codec"
	"github.com/replikativ/konserve-lmdb/lib/store"
)

// RunStoreBenchmarks runs all benchmarks for an IStore implementation.
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name+"/Assoc", func(b *testing.B) {
		benchmarkAssoc(b, factory(b))
	})

	b.Run(name+"/AssocExisting", func(b *testing.B) {
		benchmarkAssocExisting(b, factory(b))
	})

	b.Run(name+"/Get", func(b *testing.B) {
		benchmarkGet(b, factory(b))
	})

	b.Run(name+"/GetMeta", func(b *testing.B) {
		benchmarkGetMeta(b, factory(b))
	})

	b.Run(name+"/BAssoc", func(b *testing.B) {
		benchmarkBAssoc(b, factory(b))
	})

	b.Run(name+"/MultiAssoc", func(b *testing.B) {
		benchmarkMultiAssoc(b, factory(b))
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkAssoc(b *testing.B, s store.IStore) {
	b.Cleanup(func() { s.Release() })

	var counter atomic.Int64
	value := codec.Map{codec.Keyword("n"): int64(42)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := codec.Keyword(fmt.Sprintf("bench-%d", counter.Add(1)))
		if _, _, err := s.Assoc(key, nil, value); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkAssocExisting(b *testing.B, s store.IStore) {
	b.Cleanup(func() { s.Release() })

	key := codec.Keyword("bench-existing")
	if _, _, err := s.Assoc(key, nil, int64(0)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := s.Assoc(key, nil, int64(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkGet(b *testing.B, s store.IStore) {
	b.Cleanup(func() { s.Release() })

	key := codec.Keyword("bench-get")
	if _, _, err := s.Assoc(key, nil, codec.Map{codec.Keyword("n"): int64(42)}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, _, err := s.Get(key); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchmarkGetMeta(b *testing.B, s store.IStore) {
	b.Cleanup(func() { s.Release() })

	key := codec.Keyword("bench-meta")
	// a large value makes the projection's skipped work visible
	large := make(codec.List, 0, 1024)
	for i := 0; i < 1024; i++ {
		large = append(large, int64(i))
	}
	if _, _, err := s.Assoc(key, nil, large); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := s.GetMeta(key); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchmarkBAssoc(b *testing.B, s store.IStore) {
	b.Cleanup(func() { s.Release() })

	payload := make([]byte, 16*1024)
	key := codec.Keyword("bench-blob")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := s.BAssoc(key, nil, payload); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkMultiAssoc(b *testing.B, s store.IStore) {
	b.Cleanup(func() { s.Release() })

	entries := make(map[any]any, 16)
	for i := 0; i < 16; i++ {
		entries[codec.Keyword(fmt.Sprintf("batch-%d", i))] = int64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.MultiAssoc(entries, nil); err != nil {
			b.Fatal(err)
		}
	}
}
