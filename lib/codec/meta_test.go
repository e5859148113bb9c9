package codec

import (
	"testing"
	"time"

	"github.com/replikativ/konserve-lmdb/lib/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeRecord builds a wrapped {meta, value} record with meta first, the
// way the store writes them.
func encodeRecord(t *testing.T, meta Map, value any) []byte {
	t.Helper()
	pool := buffer.NewPool()
	data, err := EncodeWith(pool, nil, func(e *Encoder) error {
		if err := e.WriteMapHeader(2); err != nil {
			return err
		}
		if err := e.Encode(Symbol("meta")); err != nil {
			return err
		}
		if err := e.Encode(meta); err != nil {
			return err
		}
		if err := e.Encode(Symbol("value")); err != nil {
			return err
		}
		return e.Encode(value)
	})
	require.NoError(t, err)
	return data
}

func TestDecodeMeta(t *testing.T) {
	meta := Map{
		Keyword("type"):       Keyword("edn"),
		Keyword("key"):        Keyword("foo"),
		Keyword("last-write"): time.UnixMilli(1700000000000).UTC(),
	}
	data := encodeRecord(t, meta, Map{Keyword("payload"): int64(1)})

	got, isRecord, err := DecodeMeta(nil, data)
	require.NoError(t, err)
	require.True(t, isRecord)
	assert.Equal(t, meta, got)
}

// TestDecodeMetaStopsEarly pins the projection contract: with meta first,
// the projection must not touch the bytes of the value field at all.
func TestDecodeMetaStopsEarly(t *testing.T) {
	meta := Map{Keyword("type"): Keyword("edn")}
	data := encodeRecord(t, meta, "the value payload")

	// locate where the value symbol starts and corrupt everything after it:
	// a projection that touches the value field would fail on the garbage
	d := NewDecoder(nil, data)
	_, err := d.readByte() // map tag
	require.NoError(t, err)
	_, err = d.readCount()
	require.NoError(t, err)
	_, err = d.Decode() // meta symbol
	require.NoError(t, err)
	err = d.skip() // meta map
	require.NoError(t, err)
	cut := d.Pos()

	corrupted := append([]byte(nil), data...)
	for i := cut; i < len(corrupted); i++ {
		corrupted[i] = 0x3F // reserved tag
	}

	got, isRecord, err := DecodeMeta(nil, corrupted)
	require.NoError(t, err)
	require.True(t, isRecord)
	assert.Equal(t, meta, got)
}

func TestDecodeMetaEmptyMapping(t *testing.T) {
	pool := buffer.NewPool()
	data, err := Encode(pool, nil, Map{})
	require.NoError(t, err)

	got, isRecord, err := DecodeMeta(nil, data)
	require.NoError(t, err)
	assert.True(t, isRecord)
	assert.Nil(t, got)
}

func TestDecodeMetaNotARecord(t *testing.T) {
	pool := buffer.NewPool()

	// a bare value is not a record
	data, err := Encode(pool, nil, "just a string")
	require.NoError(t, err)
	_, isRecord, err := DecodeMeta(nil, data)
	require.NoError(t, err)
	assert.False(t, isRecord)

	// a non-empty mapping without a meta field is not a record either
	data, err = Encode(pool, nil, Map{Keyword("a"): int64(1)})
	require.NoError(t, err)
	_, isRecord, err = DecodeMeta(nil, data)
	require.NoError(t, err)
	assert.False(t, isRecord)
}

func TestDecodeMetaLateField(t *testing.T) {
	// meta not in first position is still found by iterating
	pool := buffer.NewPool()
	data, err := EncodeWith(pool, nil, func(e *Encoder) error {
		if err := e.WriteMapHeader(2); err != nil {
			return err
		}
		if err := e.Encode(Symbol("value")); err != nil {
			return err
		}
		if err := e.Encode(List{int64(1), int64(2)}); err != nil {
			return err
		}
		if err := e.Encode(Symbol("meta")); err != nil {
			return err
		}
		return e.Encode(Map{Keyword("type"): Keyword("edn")})
	})
	require.NoError(t, err)

	meta, isRecord, err := DecodeMeta(nil, data)
	require.NoError(t, err)
	require.True(t, isRecord)
	assert.Equal(t, Keyword("edn"), meta[Keyword("type")])
}

func TestValueView(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	data := encodeRecord(t, Map{Keyword("type"): Keyword("binary")}, payload)

	view, state, err := ValueView(nil, data)
	require.NoError(t, err)
	require.Equal(t, ViewOK, state)
	assert.Equal(t, payload, view)

	// the view aliases the record bytes: no copy happened
	data[len(data)-1] = 0x99
	assert.Equal(t, byte(0x99), view[3])
}

func TestValueViewNotBytes(t *testing.T) {
	data := encodeRecord(t, Map{Keyword("type"): Keyword("edn")}, "text value")
	_, state, err := ValueView(nil, data)
	require.NoError(t, err)
	assert.Equal(t, ViewNotBytes, state)
}

func TestValueViewNotRecord(t *testing.T) {
	pool := buffer.NewPool()
	data, err := Encode(pool, nil, []byte{1, 2, 3})
	require.NoError(t, err)

	_, state, err := ValueView(nil, data)
	require.NoError(t, err)
	assert.Equal(t, ViewNotRecord, state)
}
