package codec

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/replikativ/konserve-lmdb/lib/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip encodes v and decodes the result again.
func roundTrip(t *testing.T, v any) any {
	t.Helper()
	pool := buffer.NewPool()
	data, err := Encode(pool, nil, v)
	require.NoError(t, err)
	got, err := Decode(nil, data)
	require.NoError(t, err)
	return got
}

func TestRoundTripScalars(t *testing.T) {
	cases := map[string]any{
		"nil":            nil,
		"false":          false,
		"true":           true,
		"int64":          int64(-42),
		"int64-large":    int64(1<<62 + 17),
		"int32":          int32(-100000),
		"int16":          int16(-1000),
		"int8":           int8(-7),
		"float64":        3.14159,
		"float32":        float32(2.5),
		"string":         "hello world",
		"string-empty":   "",
		"string-utf8":    "grüße, 世界",
		"keyword":        Keyword("status"),
		"keyword-ns":     Keyword("db/id"),
		"symbol":         Symbol("meta"),
		"char":           Char('A'),
		"uuid":           uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6"),
		"instant":        time.UnixMilli(1640995200000).UTC(),
		"instant-epoch":  time.UnixMilli(0).UTC(),
		"instant-neg":    time.UnixMilli(-1000).UTC(),
		"bigdec":         BigDecimal{Unscaled: big.NewInt(314159), Scale: 5},
		"int16-array":    []int16{1, -2, 3},
		"int32-array":    []int32{100000, -200000},
		"int64-array":    []int64{1, 2, 3, -4},
		"float32-array":  []float32{1.5, -2.5},
		"float64-array":  []float64{3.14, -2.71},
		"bool-array":     []bool{true, false, true},
		"char-array":     []Char{'a', 'b', 'c'},
		"list":           List{int64(1), "two", Keyword("three")},
		"list-empty":     List{},
		"set":            NewSet(int64(1), int64(2), int64(3)),
		"map":            Map{Keyword("a"): int64(1), "b": List{int64(2)}},
		"nested":         Map{Keyword("outer"): Map{Keyword("inner"): List{int64(1), Map{}}}},
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, v, roundTrip(t, v))
		})
	}
}

func TestRoundTripInt(t *testing.T) {
	// plain int widens to int64 on the wire
	got := roundTrip(t, 42)
	assert.Equal(t, int64(42), got)
}

func TestRoundTripBigInt(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(127),
		big.NewInt(128),
		big.NewInt(-1),
		big.NewInt(-128),
		big.NewInt(-129),
		new(big.Int).Lsh(big.NewInt(1), 200),
		new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 200)),
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		gi, ok := got.(*big.Int)
		require.True(t, ok, "expected *big.Int, got %T", got)
		assert.Zero(t, v.Cmp(gi), "expected %s, got %s", v, gi)
	}
}

func TestRoundTripRatio(t *testing.T) {
	v := big.NewRat(-22, 7)
	got := roundTrip(t, v)
	gr, ok := got.(*big.Rat)
	require.True(t, ok, "expected *big.Rat, got %T", got)
	assert.Zero(t, v.Cmp(gr))
}

func TestRoundTripBytes(t *testing.T) {
	pool := buffer.NewPool()
	v := []byte{0, 1, 2, 255}
	data, err := Encode(pool, nil, v)
	require.NoError(t, err)

	got, err := Decode(nil, data)
	require.NoError(t, err)
	gb := got.([]byte)
	assert.Equal(t, v, gb)

	// the decoded blob must be a copy, not a view into the input
	data[6] = 0x99
	assert.Equal(t, byte(1), gb[1])
}

func TestTagBytesOnDisk(t *testing.T) {
	pool := buffer.NewPool()

	// the tag table is an on-disk contract: pin a few exact encodings
	data, err := Encode(pool, nil, int64(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0, 0, 0, 0, 0, 0, 0, 1}, data)

	data, err = Encode(pool, nil, "ab")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0, 0, 0, 2, 'a', 'b'}, data)

	data, err = Encode(pool, nil, Keyword("db/id"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x06, 0, 0, 0, 5, 'd', 'b', '/', 'i', 'd'}, data)

	data, err = Encode(pool, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, data)

	data, err = Encode(pool, nil, List{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0B, 0, 0, 0, 0}, data)
}

func TestDecodeReservedTag(t *testing.T) {
	for _, tag := range []byte{0x1D, 0x20, 0x3F} {
		_, err := Decode(nil, []byte{tag})
		var ute *UnknownTagError
		require.ErrorAs(t, err, &ute, "tag 0x%02X", tag)
		assert.Equal(t, tag, ute.Tag)
	}
}

func TestDecodeUserTagWithoutRegistry(t *testing.T) {
	_, err := Decode(nil, []byte{0x40})
	var ute *UnknownTagError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, byte(0x40), ute.Tag)
}

func TestDecodeTruncated(t *testing.T) {
	pool := buffer.NewPool()
	data, err := Encode(pool, nil, Map{Keyword("k"): "some value"})
	require.NoError(t, err)

	for i := 1; i < len(data); i++ {
		_, err := Decode(nil, data[:i])
		assert.Error(t, err, "prefix of length %d must not decode", i)
	}
}

func TestEncodeUnsupportedType(t *testing.T) {
	pool := buffer.NewPool()
	type opaque struct{ x int }
	_, err := Encode(pool, nil, opaque{x: 1})
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
}

func TestEncodeDepthGuard(t *testing.T) {
	pool := buffer.NewPool()
	v := any(int64(1))
	for i := 0; i < MaxDepth+1; i++ {
		v = List{v}
	}
	_, err := Encode(pool, nil, v)
	require.ErrorIs(t, err, ErrTooDeep)
}

// TestEncodeGrowth exercises the driver's retry: a value larger than the
// 64 KiB initial buffer must succeed after one growth iteration.
func TestEncodeGrowth(t *testing.T) {
	pool := buffer.NewPool()
	v := make([]byte, 600*1024)
	for i := range v {
		v[i] = byte(i)
	}
	data, err := Encode(pool, nil, v)
	require.NoError(t, err)
	// tag + length prefix + payload
	assert.Equal(t, len(v)+5, len(data))

	got, err := Decode(nil, data)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// both the initial and the grown buffer are back in the pool
	assert.Equal(t, 2, pool.Len())
}
