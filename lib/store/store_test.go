package store_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/replikativ/konserve-lmdb/lib/codec"
	"github.com/replikativ/konserve-lmdb/lib/store"
	storetesting "github.com/replikativ/konserve-lmdb/lib/store/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(tb testing.TB) store.IStore {
	s, err := store.Connect(tb.TempDir(), nil)
	if err != nil {
		tb.Fatal(err)
	}
	return s
}

func TestStoreConformance(t *testing.T) {
	storetesting.RunStoreTests(t, "LMDB", newStore)
}

func BenchmarkStore(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "LMDB", newStore)
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

func TestCreateRejectsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db")

	s, err := store.Create(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Release())

	_, err = store.Create(path, nil)
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.RetCStoreExists, se.Code)
}

func TestConnectReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	s, err := store.Connect(path, nil)
	require.NoError(t, err)
	_, _, err = s.Assoc(codec.Keyword("persist"), nil, int64(99))
	require.NoError(t, err)
	require.NoError(t, s.Release())

	// data survives the environment lifecycle
	s, err = store.Connect(path, nil)
	require.NoError(t, err)
	defer s.Release()
	v, found, err := s.Get(codec.Keyword("persist"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(99), v)
}

func TestConnectReadOnlyMissing(t *testing.T) {
	opts := store.DefaultOptions()
	opts.ReadOnly = true
	_, err := store.Connect(filepath.Join(t.TempDir(), "nope"), opts)
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.RetCStoreMissing, se.Code)
}

func TestDeleteRemovesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	s, err := store.Connect(path, nil)
	require.NoError(t, err)
	_, _, err = s.Assoc(codec.Keyword("k"), nil, int64(1))
	require.NoError(t, err)
	require.NoError(t, s.Release())

	require.NoError(t, store.Delete(path))

	opts := store.DefaultOptions()
	opts.ReadOnly = true
	_, err = store.Connect(path, opts)
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	s, err := store.Connect(path, nil)
	require.NoError(t, err)
	defer s.Release()

	_, _, err = s.Assoc(codec.Keyword("a"), nil, int64(1))
	require.NoError(t, err)
	_, _, err = s.Assoc(codec.Keyword("b"), nil, int64(2))
	require.NoError(t, err)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, path, info.Path)
	assert.Equal(t, uint64(2), info.Entries)
	assert.Equal(t, int64(1<<30), info.MapSize)
}

// --------------------------------------------------------------------------
// Cross-API misuse
// --------------------------------------------------------------------------

func TestCrossAPIMisuse(t *testing.T) {
	s, err := store.Connect(t.TempDir(), nil)
	require.NoError(t, err)
	defer s.Release()

	raw := s.Raw()
	key := codec.Keyword("k")
	require.NoError(t, raw.Put(key, "v"))

	// wrapped reads over a raw record fail with the misuse error naming the key
	_, _, err = s.Get(key)
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.RetCCrossAPI, se.Code)
	assert.Contains(t, se.Msg, ":k")

	_, err = s.GetMeta(key)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.RetCCrossAPI, se.Code)

	// the raw surface still reads it fine
	v, found, err := raw.Get(key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", v)
}

// --------------------------------------------------------------------------
// Raw API
// --------------------------------------------------------------------------

func TestNewRawStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw-db")

	raw, err := store.NewRawStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, raw.Put(codec.Keyword("k"), int64(7)))
	require.NoError(t, raw.Release())

	// the raw constructor opens a plain store directory: reopening works
	raw, err = store.NewRawStore(path, nil)
	require.NoError(t, err)
	defer raw.Release()
	v, found, err := raw.Get(codec.Keyword("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(7), v)
}

func TestRawStore(t *testing.T) {
	s, err := store.Connect(t.TempDir(), nil)
	require.NoError(t, err)
	raw := s.Raw()
	defer raw.Release()

	require.NoError(t, raw.Put(codec.Keyword("a"), int64(1)))
	require.NoError(t, raw.MultiPut(map[any]any{
		codec.Keyword("b"): int64(2),
		codec.Keyword("c"): codec.List{"x", "y"},
	}))

	got, err := raw.MultiGet([]any{codec.Keyword("a"), codec.Keyword("b"), codec.Keyword("c"), codec.Keyword("missing")})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(1), got[codec.Keyword("a")])
	assert.Equal(t, int64(2), got[codec.Keyword("b")])
	assert.Equal(t, codec.List{"x", "y"}, got[codec.Keyword("c")])

	existed, err := raw.Del(codec.Keyword("a"))
	require.NoError(t, err)
	assert.True(t, existed)
	_, found, err := raw.Get(codec.Keyword("a"))
	require.NoError(t, err)
	assert.False(t, found)
}

// --------------------------------------------------------------------------
// Registry-bound store
// --------------------------------------------------------------------------

type point struct {
	X int64
	Y int64
}

func pointRegistry(t *testing.T) *codec.Registry {
	t.Helper()
	reg, err := codec.NewRegistry(nil, codec.HandlerFor(0x40, point{},
		func(e *codec.Encoder, v any) error {
			p := v.(point)
			if err := e.Encode(p.X); err != nil {
				return err
			}
			return e.Encode(p.Y)
		},
		func(d *codec.Decoder) (any, error) {
			x, err := d.Decode()
			if err != nil {
				return nil, err
			}
			y, err := d.Decode()
			if err != nil {
				return nil, err
			}
			return point{X: x.(int64), Y: y.(int64)}, nil
		},
	))
	require.NoError(t, err)
	return reg
}

func TestRegistryBoundStore(t *testing.T) {
	opts := store.DefaultOptions()
	opts.Registry = pointRegistry(t)
	s, err := store.Connect(t.TempDir(), opts)
	require.NoError(t, err)
	defer s.Release()

	p := point{X: 100, Y: 200}
	_, _, err = s.Assoc(codec.Keyword("p"), nil, p)
	require.NoError(t, err)

	got, found, err := s.Get(codec.Keyword("p"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p, got)

	// user values also survive inside collections
	ps := codec.List{point{X: 1, Y: 2}, point{X: 3, Y: 4}}
	_, _, err = s.Assoc(codec.Keyword("ps"), nil, ps)
	require.NoError(t, err)
	got, _, err = s.Get(codec.Keyword("ps"))
	require.NoError(t, err)
	assert.Equal(t, ps, got)
}

// --------------------------------------------------------------------------
// Enumeration filter
// --------------------------------------------------------------------------

func TestKeysSkipAppendLog(t *testing.T) {
	opts := store.DefaultOptions()
	opts.SkipAppendLog = true
	s, err := store.Connect(t.TempDir(), opts)
	require.NoError(t, err)
	defer s.Release()

	_, _, err = s.Assoc(codec.Keyword("normal"), nil, int64(1))
	require.NoError(t, err)

	// a UUID-keyed entry tagged append-log is owned by the log subsystem
	logKey := uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	_, _, err = s.Assoc(logKey, func(old codec.Map) codec.Map {
		return codec.Map{
			codec.Keyword("type"): codec.Keyword("append-log"),
			codec.Keyword("key"):  logKey,
		}
	}, int64(2))
	require.NoError(t, err)

	// a UUID key without the append-log tag is still listed
	plainUUID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	_, _, err = s.Assoc(plainUUID, nil, int64(3))
	require.NoError(t, err)

	infos, err := s.Keys()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, info := range infos {
		assert.NotEqual(t, logKey, info.Key)
	}
}

func TestKeysIncludesAppendLogByDefault(t *testing.T) {
	s, err := store.Connect(t.TempDir(), nil)
	require.NoError(t, err)
	defer s.Release()

	logKey := uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	_, _, err = s.Assoc(logKey, func(old codec.Map) codec.Map {
		return codec.Map{codec.Keyword("type"): codec.Keyword("append-log")}
	}, int64(1))
	require.NoError(t, err)

	infos, err := s.Keys()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

// --------------------------------------------------------------------------
// Write hooks
// --------------------------------------------------------------------------

func TestWriteHooks(t *testing.T) {
	s, err := store.Connect(t.TempDir(), nil)
	require.NoError(t, err)
	defer s.Release()

	hooks := s.Hooks()
	if _, ok := hooks.Get(codec.Symbol("audit")); ok {
		t.Fatalf("Expected empty hooks table")
	}

	var fired int
	hooks.Set(codec.Symbol("audit"), func(key any, meta codec.Map, value any) {
		fired++
	})
	h, ok := hooks.Get(codec.Symbol("audit"))
	require.True(t, ok)

	// the store only exposes the table; invoking is up to the caller
	h(codec.Keyword("k"), nil, int64(1))
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, hooks.Len())

	hooks.Set(codec.Symbol("audit"), nil)
	assert.Equal(t, 0, hooks.Len())
}

// --------------------------------------------------------------------------
// End-to-end scenarios
// --------------------------------------------------------------------------

func TestScenarioAssocGetIn(t *testing.T) {
	s := newStore(t)
	defer s.Release()

	_, _, err := s.AssocIn([]any{codec.Keyword("config")}, nil, codec.Map{
		codec.Keyword("db"): codec.Map{
			codec.Keyword("host"): "localhost",
			codec.Keyword("port"): int64(5432),
		},
	})
	require.NoError(t, err)

	host, err := s.GetIn([]any{codec.Keyword("config"), codec.Keyword("db"), codec.Keyword("host")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
}

func TestScenarioCounter(t *testing.T) {
	s := newStore(t)
	defer s.Release()

	counter := codec.Keyword("counter")
	_, _, err := s.Assoc(counter, nil, int64(0))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err := s.UpdateIn([]any{counter}, nil, func(v any) any {
			return v.(int64) + 1
		})
		require.NoError(t, err)
	}

	got, err := s.GetIn([]any{counter}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestScenarioAssocReturnsOldAndNew(t *testing.T) {
	s := newStore(t)
	defer s.Release()

	key := codec.Keyword("pair")
	oldVal, newVal, err := s.Assoc(key, nil, int64(1))
	require.NoError(t, err)
	assert.Nil(t, oldVal)
	assert.Equal(t, int64(1), newVal)

	oldVal, newVal, err = s.Assoc(key, nil, int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), oldVal)
	assert.Equal(t, int64(2), newVal)
}

func TestScenarioMultiAssocSnapshot(t *testing.T) {
	s := newStore(t)
	defer s.Release()

	res, err := s.MultiAssoc(map[any]any{
		codec.Keyword("x"): int64(1),
		codec.Keyword("y"): int64(2),
		codec.Keyword("z"): int64(3),
	}, nil)
	require.NoError(t, err)
	assert.Len(t, res, 3)

	got, err := s.MultiGet([]any{codec.Keyword("x"), codec.Keyword("y"), codec.Keyword("z"), codec.Keyword("missing")})
	require.NoError(t, err)
	assert.Equal(t, map[any]any{
		codec.Keyword("x"): int64(1),
		codec.Keyword("y"): int64(2),
		codec.Keyword("z"): int64(3),
	}, got)
}

func TestScenarioBinaryRoundTrip(t *testing.T) {
	s := newStore(t)
	defer s.Release()

	payload := []byte{1, 2, 3, 4}
	_, written, err := s.BAssoc(codec.Keyword("blob"), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, payload, written)

	var size int
	var content []byte
	found, err := s.BGet(codec.Keyword("blob"), func(view []byte) error {
		size = len(view)
		content = append([]byte(nil), view...)
		return nil
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 4, size)
	assert.Equal(t, payload, content)
}

func TestIdempotentAssoc(t *testing.T) {
	s := newStore(t)
	defer s.Release()

	key := codec.Keyword("idem")
	v := codec.Map{codec.Keyword("n"): int64(1)}
	_, _, err := s.Assoc(key, nil, v)
	require.NoError(t, err)
	first, err := s.GetIn([]any{key}, nil)
	require.NoError(t, err)

	_, _, err = s.Assoc(key, nil, v)
	require.NoError(t, err)
	second, err := s.GetIn([]any{key}, nil)
	require.NoError(t, err)

	// meta may differ in last-write; the value component is equivalent
	assert.Equal(t, first, second)
}
