package testing

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/replikativ/konserve-lmdb/lib/codec"
	"github.com/replikativ/konserve-lmdb/lib/store"
)

// StoreFactory creates a fresh store instance for one test. Implementations
// typically open a store under tb.TempDir so teardown is automatic.
type StoreFactory func(tb testing.TB) store.IStore

// RunStoreTests runs a conformance test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Assoc&Get", func(t *testing.T) {
			testAssocGet(t, factory(t))
		})

		t.Run("GetIn", func(t *testing.T) {
			testGetIn(t, factory(t))
		})

		t.Run("Meta", func(t *testing.T) {
			testMeta(t, factory(t))
		})

		t.Run("Dissoc", func(t *testing.T) {
			testDissoc(t, factory(t))
		})

		t.Run("UpdateIn", func(t *testing.T) {
			testUpdateIn(t, factory(t))
		})

		t.Run("MultiOps", func(t *testing.T) {
			testMultiOps(t, factory(t))
		})

		t.Run("Binary", func(t *testing.T) {
			testBinary(t, factory(t))
		})

		t.Run("KeysEnum", func(t *testing.T) {
			testKeysEnum(t, factory(t))
		})

		t.Run("ConcurrentUpdates", func(t *testing.T) {
			testConcurrentUpdates(t, factory(t))
		})

		t.Run("ClosedStore", func(t *testing.T) {
			testClosedStore(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testAssocGet(t *testing.T, s store.IStore) {
	defer s.Release()

	key := codec.Keyword("foo")
	value := codec.Map{codec.Keyword("bar"): int64(42)}

	if _, _, err := s.Assoc(key, nil, value); err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}

	got, found, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Errorf("Expected key %v to exist after Assoc", key)
	}
	if !reflect.DeepEqual(got, value) {
		t.Errorf("Expected value %v, got %v", value, got)
	}

	exists, err := s.Exists(key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected Exists to report true")
	}

	_, found, err = s.Get(codec.Keyword("nonexistent"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected nonexistent key to return found=false")
	}

	// overwriting replaces the whole value
	value2 := codec.List{int64(1), int64(2)}
	old, _, err := s.Assoc(key, nil, value2)
	if err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}
	if !reflect.DeepEqual(old, value) {
		t.Errorf("Expected old value %v, got %v", value, old)
	}
	got, _, _ = s.Get(key)
	if !reflect.DeepEqual(got, value2) {
		t.Errorf("Expected value %v, got %v", value2, got)
	}
}

func testGetIn(t *testing.T, s store.IStore) {
	defer s.Release()

	cfg := codec.Keyword("config")
	_, _, err := s.AssocIn([]any{cfg}, nil, codec.Map{
		codec.Keyword("db"): codec.Map{
			codec.Keyword("host"): "localhost",
			codec.Keyword("port"): int64(5432),
		},
	})
	if err != nil {
		t.Fatalf("AssocIn failed: %v", err)
	}

	host, err := s.GetIn([]any{cfg, codec.Keyword("db"), codec.Keyword("host")}, nil)
	if err != nil {
		t.Fatalf("GetIn failed: %v", err)
	}
	if host != "localhost" {
		t.Errorf("Expected \"localhost\", got %v", host)
	}

	missing, err := s.GetIn([]any{cfg, codec.Keyword("db"), codec.Keyword("user")}, "default")
	if err != nil {
		t.Fatalf("GetIn failed: %v", err)
	}
	if missing != "default" {
		t.Errorf("Expected default for unresolved path, got %v", missing)
	}

	absent, err := s.GetIn([]any{codec.Keyword("absent")}, int64(7))
	if err != nil {
		t.Fatalf("GetIn failed: %v", err)
	}
	if absent != int64(7) {
		t.Errorf("Expected default for missing record, got %v", absent)
	}

	// deep write through a missing intermediate level
	_, _, err = s.AssocIn([]any{cfg, codec.Keyword("cache"), codec.Keyword("ttl")}, nil, int64(60))
	if err != nil {
		t.Fatalf("AssocIn failed: %v", err)
	}
	ttl, _ := s.GetIn([]any{cfg, codec.Keyword("cache"), codec.Keyword("ttl")}, nil)
	if ttl != int64(60) {
		t.Errorf("Expected 60, got %v", ttl)
	}
}

func testMeta(t *testing.T, s store.IStore) {
	defer s.Release()

	key := codec.Keyword("with-meta")
	if _, _, err := s.Assoc(key, nil, "payload"); err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}

	meta, err := s.GetMeta(key)
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if meta == nil {
		t.Fatalf("Expected metadata for %v", key)
	}
	if meta[codec.Keyword("type")] != store.TypeEDN {
		t.Errorf("Expected type %v, got %v", store.TypeEDN, meta[codec.Keyword("type")])
	}
	if meta[codec.Keyword("key")] != key {
		t.Errorf("Expected key %v in meta, got %v", key, meta[codec.Keyword("key")])
	}

	// missing key yields nil meta without error
	meta, err = s.GetMeta(codec.Keyword("absent"))
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if meta != nil {
		t.Errorf("Expected nil meta for missing key, got %v", meta)
	}

	// custom meta updater wins over the generated meta
	custom := codec.Map{codec.Keyword("type"): store.TypeEDN, codec.Keyword("owner"): "tests"}
	_, _, err = s.Assoc(key, func(old codec.Map) codec.Map { return custom }, "payload2")
	if err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}
	meta, _ = s.GetMeta(key)
	if meta[codec.Keyword("owner")] != "tests" {
		t.Errorf("Expected custom meta to be stored, got %v", meta)
	}
}

func testDissoc(t *testing.T, s store.IStore) {
	defer s.Release()

	key := codec.Keyword("to-delete")
	if _, _, err := s.Assoc(key, nil, int64(1)); err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}

	existed, err := s.Dissoc(key)
	if err != nil {
		t.Fatalf("Dissoc failed: %v", err)
	}
	if !existed {
		t.Errorf("Expected first Dissoc to report existed=true")
	}

	// second delete is a no-op
	existed, err = s.Dissoc(key)
	if err != nil {
		t.Fatalf("Dissoc failed: %v", err)
	}
	if existed {
		t.Errorf("Expected second Dissoc to report existed=false")
	}

	if exists, _ := s.Exists(key); exists {
		t.Errorf("Expected key to be gone after Dissoc")
	}
}

func testUpdateIn(t *testing.T, s store.IStore) {
	defer s.Release()

	counter := codec.Keyword("counter")
	if _, _, err := s.Assoc(counter, nil, int64(0)); err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}

	inc := func(v any) any {
		if v == nil {
			return int64(1)
		}
		return v.(int64) + 1
	}

	for i := 0; i < 3; i++ {
		if _, _, err := s.UpdateIn([]any{counter}, nil, inc); err != nil {
			t.Fatalf("UpdateIn failed: %v", err)
		}
	}

	got, _ := s.GetIn([]any{counter}, nil)
	if got != int64(3) {
		t.Errorf("Expected 3 after three increments, got %v", got)
	}

	// update of an absent sub-value sees nil
	obj := codec.Keyword("obj")
	_, _, err := s.UpdateIn([]any{obj, codec.Keyword("n")}, nil, func(v any) any {
		if v != nil {
			t.Errorf("Expected nil sub-value, got %v", v)
		}
		return int64(10)
	})
	if err != nil {
		t.Fatalf("UpdateIn failed: %v", err)
	}
	n, _ := s.GetIn([]any{obj, codec.Keyword("n")}, nil)
	if n != int64(10) {
		t.Errorf("Expected 10, got %v", n)
	}
}

func testMultiOps(t *testing.T, s store.IStore) {
	defer s.Release()

	entries := map[any]any{
		codec.Keyword("x"): int64(1),
		codec.Keyword("y"): int64(2),
		codec.Keyword("z"): int64(3),
	}
	res, err := s.MultiAssoc(entries, nil)
	if err != nil {
		t.Fatalf("MultiAssoc failed: %v", err)
	}
	for k, ok := range res {
		if !ok {
			t.Errorf("Expected true for key %v", k)
		}
	}

	got, err := s.MultiGet([]any{codec.Keyword("x"), codec.Keyword("y"), codec.Keyword("z"), codec.Keyword("missing")})
	if err != nil {
		t.Fatalf("MultiGet failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(got))
	}
	if got[codec.Keyword("missing")] != nil {
		t.Errorf("Expected missing key to be omitted")
	}
	if got[codec.Keyword("x")] != int64(1) || got[codec.Keyword("y")] != int64(2) || got[codec.Keyword("z")] != int64(3) {
		t.Errorf("Unexpected values: %v", got)
	}

	// per-entry meta updater receives key and type tag
	res, err = s.MultiAssoc(map[any]any{codec.Keyword("tagged"): "v"},
		func(key any, typeTag codec.Keyword, old codec.Map) codec.Map {
			if typeTag != store.TypeEDN {
				t.Errorf("Expected type tag %v, got %v", store.TypeEDN, typeTag)
			}
			return codec.Map{codec.Keyword("type"): typeTag, codec.Keyword("key"): key}
		})
	if err != nil {
		t.Fatalf("MultiAssoc failed: %v", err)
	}

	deleted, err := s.MultiDissoc([]any{codec.Keyword("x"), codec.Keyword("nope")})
	if err != nil {
		t.Fatalf("MultiDissoc failed: %v", err)
	}
	if !deleted[codec.Keyword("x")] || deleted[codec.Keyword("nope")] {
		t.Errorf("Unexpected MultiDissoc result: %v", deleted)
	}
}

func testBinary(t *testing.T, s store.IStore) {
	defer s.Release()

	key := codec.Keyword("blob")
	payload := []byte{1, 2, 3, 4}

	_, written, err := s.BAssoc(key, nil, payload)
	if err != nil {
		t.Fatalf("BAssoc failed: %v", err)
	}
	if !bytes.Equal(written, payload) {
		t.Errorf("Expected written bytes %v, got %v", payload, written)
	}

	var seen []byte
	found, err := s.BGet(key, func(view []byte) error {
		// the view dies with the transaction: copy inside the sink
		seen = append([]byte(nil), view...)
		return nil
	})
	if err != nil {
		t.Fatalf("BGet failed: %v", err)
	}
	if !found {
		t.Errorf("Expected BGet to find the key")
	}
	if !bytes.Equal(seen, payload) {
		t.Errorf("Expected view of %v, got %v", payload, seen)
	}

	if meta, _ := s.GetMeta(key); meta[codec.Keyword("type")] != store.TypeBinary {
		t.Errorf("Expected binary type tag, got %v", meta[codec.Keyword("type")])
	}

	// string and reader inputs coerce too
	if _, _, err := s.BAssoc(codec.Keyword("text"), nil, "hello"); err != nil {
		t.Fatalf("BAssoc(string) failed: %v", err)
	}
	if _, _, err := s.BAssoc(codec.Keyword("stream"), nil, bytes.NewReader([]byte("streamed"))); err != nil {
		t.Fatalf("BAssoc(reader) failed: %v", err)
	}

	// unsupported shapes fail
	if _, _, err := s.BAssoc(codec.Keyword("bad"), nil, 42); err == nil {
		t.Errorf("Expected BAssoc to reject a non-binary input")
	}

	found, err = s.BGet(codec.Keyword("no-such-blob"), func([]byte) error {
		t.Errorf("sink must not run on a miss")
		return nil
	})
	if err != nil {
		t.Fatalf("BGet failed: %v", err)
	}
	if found {
		t.Errorf("Expected miss")
	}
}

func testKeysEnum(t *testing.T, s store.IStore) {
	defer s.Release()

	// empty store enumerates to the empty sequence
	infos, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected no keys, got %d", len(infos))
	}

	for i := 0; i < 5; i++ {
		key := codec.Keyword(fmt.Sprintf("key-%d", i))
		if _, _, err := s.Assoc(key, nil, int64(i)); err != nil {
			t.Fatalf("Assoc failed: %v", err)
		}
	}

	infos, err = s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(infos) != 5 {
		t.Errorf("Expected 5 keys, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Type != store.TypeEDN {
			t.Errorf("Expected type %v for %v, got %v", store.TypeEDN, info.Key, info.Type)
		}
		if info.LastWrite.IsZero() {
			t.Errorf("Expected last-write to be set for %v", info.Key)
		}
	}
}

func testConcurrentUpdates(t *testing.T, s store.IStore) {
	defer s.Release()

	counter := codec.Keyword("shared-counter")
	if _, _, err := s.Assoc(counter, nil, int64(0)); err != nil {
		t.Fatalf("Assoc failed: %v", err)
	}

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, _, err := s.UpdateIn([]any{counter}, nil, func(v any) any {
					if v == nil {
						return int64(1)
					}
					return v.(int64) + 1
				})
				if err != nil {
					t.Errorf("UpdateIn failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetIn([]any{counter}, nil)
	if got != int64(workers*perWorker) {
		t.Errorf("Lost increments: expected %d, got %v", workers*perWorker, got)
	}
}

func testClosedStore(t *testing.T, s store.IStore) {
	if err := s.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	// a second release is a no-op
	if err := s.Release(); err != nil {
		t.Fatalf("Second Release failed: %v", err)
	}

	if _, _, err := s.Assoc(codec.Keyword("k"), nil, int64(1)); err == nil {
		t.Errorf("Expected write on released store to fail")
	}
	if _, err := s.Exists(codec.Keyword("k")); err == nil {
		t.Errorf("Expected read on released store to fail")
	}
}
