package codec

import (
	"testing"

	"github.com/replikativ/konserve-lmdb/lib/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Point is the user-extension type used throughout the registry tests.
type Point struct {
	X int64
	Y int64
}

const tagPoint = byte(0x40)

func pointHandler() Handler {
	return HandlerFor(tagPoint, Point{},
		func(e *Encoder, v any) error {
			p := v.(Point)
			if err := e.Encode(p.X); err != nil {
				return err
			}
			return e.Encode(p.Y)
		},
		func(d *Decoder) (any, error) {
			x, err := d.Decode()
			if err != nil {
				return nil, err
			}
			y, err := d.Decode()
			if err != nil {
				return nil, err
			}
			return Point{X: x.(int64), Y: y.(int64)}, nil
		},
	)
}

func TestRegistryRoundTrip(t *testing.T) {
	reg, err := NewRegistry(nil, pointHandler())
	require.NoError(t, err)
	pool := buffer.NewPool()

	p := Point{X: 100, Y: 200}
	data, err := Encode(pool, reg, p)
	require.NoError(t, err)
	assert.Equal(t, tagPoint, data[0])

	got, err := Decode(reg, data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestRegistryRoundTripNested(t *testing.T) {
	reg, err := NewRegistry(nil, pointHandler())
	require.NoError(t, err)
	pool := buffer.NewPool()

	v := List{Point{X: 1, Y: 2}, Point{X: 3, Y: 4}}
	data, err := Encode(pool, reg, v)
	require.NoError(t, err)

	got, err := Decode(reg, data)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestRegistryContext(t *testing.T) {
	type upstream struct{ name string }
	ctx := &upstream{name: "ambient"}

	// a handler that proves it can reach the context payload during decode
	h := HandlerFor(0x41, Point{},
		func(e *Encoder, v any) error {
			p := v.(Point)
			if err := e.Encode(p.X); err != nil {
				return err
			}
			return e.Encode(p.Y)
		},
		func(d *Decoder) (any, error) {
			u, ok := d.Context().(*upstream)
			if !ok || u.name != "ambient" {
				t.Errorf("Expected context payload in decoder, got %v", d.Context())
			}
			x, err := d.Decode()
			if err != nil {
				return nil, err
			}
			y, err := d.Decode()
			if err != nil {
				return nil, err
			}
			return Point{X: x.(int64), Y: y.(int64)}, nil
		},
	)

	reg, err := NewRegistry(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, ctx, reg.Context())

	pool := buffer.NewPool()
	data, err := Encode(pool, reg, Point{X: 5, Y: 6})
	require.NoError(t, err)
	got, err := Decode(reg, data)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 5, Y: 6}, got)
}

func TestRegistryValidation(t *testing.T) {
	// tags below the user range are rejected
	_, err := NewRegistry(nil, HandlerFor(0x20, Point{},
		func(e *Encoder, v any) error { return nil },
		func(d *Decoder) (any, error) { return nil, nil },
	))
	assert.Error(t, err)

	// duplicate tags are rejected
	_, err = NewRegistry(nil, pointHandler(), HandlerFor(tagPoint, struct{ A int }{},
		func(e *Encoder, v any) error { return nil },
		func(d *Decoder) (any, error) { return nil, nil },
	))
	assert.Error(t, err)

	// duplicate types are rejected
	_, err = NewRegistry(nil, pointHandler(), HandlerFor(0x50, Point{},
		func(e *Encoder, v any) error { return nil },
		func(d *Decoder) (any, error) { return nil, nil },
	))
	assert.Error(t, err)

	// incomplete handlers are rejected
	_, err = NewRegistry(nil, Handler{Tag: 0x42})
	assert.Error(t, err)
}

func TestRegistryUnknownTag(t *testing.T) {
	regA, err := NewRegistry(nil, pointHandler())
	require.NoError(t, err)
	pool := buffer.NewPool()

	data, err := Encode(pool, regA, Point{X: 1, Y: 2})
	require.NoError(t, err)

	// a store opened without the handler cannot decode the tag
	_, err = Decode(nil, data)
	var ute *UnknownTagError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, tagPoint, ute.Tag)
}

func TestRegistryUnsupportedWithoutHandler(t *testing.T) {
	pool := buffer.NewPool()
	_, err := Encode(pool, nil, Point{X: 1, Y: 2})
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
}
