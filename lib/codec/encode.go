package codec

import (
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/replikativ/konserve-lmdb/lib/buffer"
)

// Encoder writes values into a fixed-capacity buffer. It is handed to user
// handlers so they can compose their fields out of built-in encodings.
type Encoder struct {
	buf   *buffer.Buffer
	reg   *Registry
	depth int
}

// Encode appends a single value (tag plus body) to the buffer. Composite
// values recurse through the same entry point. A buffer.ErrFull result means
// the value did not fit; the outer driver retries with a larger buffer.
func (e *Encoder) Encode(v any) error {
	if e.reg != nil {
		if h := e.reg.handlerForValue(v); h != nil {
			if err := e.buf.WriteByte(h.Tag); err != nil {
				return err
			}
			return h.Encode(e, v)
		}
	}
	switch x := v.(type) {
	case nil:
		return e.buf.WriteByte(TagNil)
	case bool:
		if x {
			return e.buf.WriteByte(TagTrue)
		}
		return e.buf.WriteByte(TagFalse)
	case int8:
		if err := e.buf.WriteByte(TagInt8); err != nil {
			return err
		}
		return e.buf.WriteByte(byte(x))
	case int16:
		if err := e.buf.WriteByte(TagInt16); err != nil {
			return err
		}
		return e.buf.WriteUint16(uint16(x))
	case int32:
		if err := e.buf.WriteByte(TagInt32); err != nil {
			return err
		}
		return e.buf.WriteUint32(uint32(x))
	case int64:
		if err := e.buf.WriteByte(TagInt64); err != nil {
			return err
		}
		return e.buf.WriteUint64(uint64(x))
	case int:
		if err := e.buf.WriteByte(TagInt64); err != nil {
			return err
		}
		return e.buf.WriteUint64(uint64(int64(x)))
	case float32:
		if err := e.buf.WriteByte(TagFloat32); err != nil {
			return err
		}
		return e.buf.WriteUint32(math.Float32bits(x))
	case float64:
		if err := e.buf.WriteByte(TagFloat64); err != nil {
			return err
		}
		return e.buf.WriteUint64(math.Float64bits(x))
	case string:
		return e.writeBlob(TagString, []byte(x))
	case Keyword:
		return e.writeBlob(TagKeyword, []byte(x))
	case Symbol:
		return e.writeBlob(TagSymbol, []byte(x))
	case Char:
		if err := e.buf.WriteByte(TagChar); err != nil {
			return err
		}
		return e.buf.WriteUint16(uint16(x))
	case uuid.UUID:
		if err := e.buf.WriteByte(TagUUID); err != nil {
			return err
		}
		return e.buf.Write(x[:])
	case time.Time:
		if err := e.buf.WriteByte(TagInstant); err != nil {
			return err
		}
		return e.buf.WriteUint64(uint64(x.UnixMilli()))
	case []byte:
		return e.writeBlob(TagBytes, x)
	case *big.Int:
		return e.writeBlob(TagBigInt, bigIntToBytes(x))
	case BigDecimal:
		if err := e.buf.WriteByte(TagBigDec); err != nil {
			return err
		}
		if err := e.buf.WriteUint32(uint32(x.Scale)); err != nil {
			return err
		}
		b := bigIntToBytes(x.Unscaled)
		if err := e.buf.WriteUint32(uint32(len(b))); err != nil {
			return err
		}
		return e.buf.Write(b)
	case *big.Rat:
		if err := e.buf.WriteByte(TagRatio); err != nil {
			return err
		}
		num := bigIntToBytes(x.Num())
		if err := e.buf.WriteUint32(uint32(len(num))); err != nil {
			return err
		}
		if err := e.buf.Write(num); err != nil {
			return err
		}
		den := bigIntToBytes(x.Denom())
		if err := e.buf.WriteUint32(uint32(len(den))); err != nil {
			return err
		}
		return e.buf.Write(den)
	case List:
		return e.encodeList(x)
	case []any:
		return e.encodeList(List(x))
	case Map:
		return e.encodeMap(x)
	case map[any]any:
		return e.encodeMap(Map(x))
	case Set:
		return e.encodeSet(x)
	case []int16:
		if err := e.writeArrayHeader(TagInt16Array, len(x)); err != nil {
			return err
		}
		for _, el := range x {
			if err := e.buf.WriteUint16(uint16(el)); err != nil {
				return err
			}
		}
		return nil
	case []int32:
		if err := e.writeArrayHeader(TagInt32Array, len(x)); err != nil {
			return err
		}
		for _, el := range x {
			if err := e.buf.WriteUint32(uint32(el)); err != nil {
				return err
			}
		}
		return nil
	case []int64:
		if err := e.writeArrayHeader(TagInt64Array, len(x)); err != nil {
			return err
		}
		for _, el := range x {
			if err := e.buf.WriteUint64(uint64(el)); err != nil {
				return err
			}
		}
		return nil
	case []float32:
		if err := e.writeArrayHeader(TagFloat32Array, len(x)); err != nil {
			return err
		}
		for _, el := range x {
			if err := e.buf.WriteUint32(math.Float32bits(el)); err != nil {
				return err
			}
		}
		return nil
	case []float64:
		if err := e.writeArrayHeader(TagFloat64Array, len(x)); err != nil {
			return err
		}
		for _, el := range x {
			if err := e.buf.WriteUint64(math.Float64bits(el)); err != nil {
				return err
			}
		}
		return nil
	case []bool:
		if err := e.writeArrayHeader(TagBoolArray, len(x)); err != nil {
			return err
		}
		for _, el := range x {
			b := byte(0)
			if el {
				b = 1
			}
			if err := e.buf.WriteByte(b); err != nil {
				return err
			}
		}
		return nil
	case []Char:
		if err := e.writeArrayHeader(TagCharArray, len(x)); err != nil {
			return err
		}
		for _, el := range x {
			if err := e.buf.WriteUint16(uint16(el)); err != nil {
				return err
			}
		}
		return nil
	default:
		return &UnsupportedTypeError{Value: v}
	}
}

// WriteMapHeader writes a mapping tag and entry count. Callers that need a
// fixed field order (the record wrapper keeps meta first) write the header
// themselves and then encode alternating keys and values.
func (e *Encoder) WriteMapHeader(count int) error {
	if err := e.buf.WriteByte(TagMap); err != nil {
		return err
	}
	return e.buf.WriteUint32(uint32(count))
}

func (e *Encoder) writeBlob(tag Tag, b []byte) error {
	if err := e.buf.WriteByte(tag); err != nil {
		return err
	}
	if err := e.buf.WriteUint32(uint32(len(b))); err != nil {
		return err
	}
	return e.buf.Write(b)
}

func (e *Encoder) writeArrayHeader(tag Tag, count int) error {
	if err := e.buf.WriteByte(tag); err != nil {
		return err
	}
	return e.buf.WriteUint32(uint32(count))
}

func (e *Encoder) enter() error {
	e.depth++
	if e.depth > MaxDepth {
		return ErrTooDeep
	}
	return nil
}

func (e *Encoder) encodeList(l List) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer func() { e.depth-- }()
	if err := e.writeArrayHeader(TagList, len(l)); err != nil {
		return err
	}
	for _, el := range l {
		if err := e.Encode(el); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeMap(m Map) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer func() { e.depth-- }()
	if err := e.WriteMapHeader(len(m)); err != nil {
		return err
	}
	for k, v := range m {
		if err := e.Encode(k); err != nil {
			return err
		}
		if err := e.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeSet(s Set) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer func() { e.depth-- }()
	if err := e.writeArrayHeader(TagSet, len(s)); err != nil {
		return err
	}
	for el := range s {
		if err := e.Encode(el); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Encoding driver
// --------------------------------------------------------------------------

// growFactor is the capacity multiplier applied after an overflow.
const growFactor = 10

// Encode serializes a value into a freshly sized byte slice, using pooled
// buffers for the working memory. On capacity overflow the attempt is retried
// with a buffer grown by growFactor, up to MaxEncodeSize.
func Encode(pool *buffer.Pool, reg *Registry, v any) ([]byte, error) {
	return EncodeWith(pool, reg, func(e *Encoder) error {
		return e.Encode(v)
	})
}

// EncodeWith runs fn against pooled encoding buffers and returns the written
// bytes. The buffer is released on every path, including overflow and error.
func EncodeWith(pool *buffer.Pool, reg *Registry, fn func(*Encoder) error) ([]byte, error) {
	size := buffer.MinCapacity
	for {
		buf := pool.Acquire(size)
		err := fn(&Encoder{buf: buf, reg: reg})
		if err == nil {
			out := make([]byte, buf.Len())
			copy(out, buf.Bytes())
			pool.Release(buf)
			return out, nil
		}
		capacity := buf.Cap()
		pool.Release(buf)
		if err != buffer.ErrFull {
			return nil, err
		}
		if capacity >= MaxEncodeSize {
			return nil, &OverflowError{Size: capacity}
		}
		size = capacity * growFactor
		if size > MaxEncodeSize {
			size = MaxEncodeSize
		}
	}
}

// handlerForValue resolves the handler for a value's runtime type, nil if the
// registry has none.
func (r *Registry) handlerForValue(v any) *Handler {
	if v == nil {
		return nil
	}
	return r.byType[reflect.TypeOf(v)]
}
