package codec

import (
	"encoding/binary"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Decoder reads values from a byte slice. The slice may point straight into
// an LMDB-mapped page: scalars and primitive arrays are read in place and the
// input is never mutated, while string and byte blobs are copied because they
// outlive the read transaction.
type Decoder struct {
	data  []byte
	pos   int
	reg   *Registry
	depth int
}

// NewDecoder creates a decoder over data. reg may be nil when no extension
// types are in play.
func NewDecoder(reg *Registry, data []byte) *Decoder {
	return &Decoder{data: data, reg: reg}
}

// Decode reads a single value from data. Trailing bytes are ignored.
func Decode(reg *Registry, data []byte) (any, error) {
	return NewDecoder(reg, data).Decode()
}

// Context returns the registry's context payload, nil without a registry.
// Handlers use it to reach ambient state during decode.
func (d *Decoder) Context() any {
	if d.reg == nil {
		return nil
	}
	return d.reg.ctx
}

// Pos returns the number of bytes consumed so far.
func (d *Decoder) Pos() int { return d.pos }

// Decode reads the next value. User handlers recurse through this same entry
// point to decode their nested fields.
func (d *Decoder) Decode() (any, error) {
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagNil:
		return nil, nil
	case TagFalse:
		return false, nil
	case TagTrue:
		return true, nil
	case TagInt64:
		v, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return int64(v), nil
	case TagFloat64:
		v, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(v), nil
	case TagString:
		b, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case TagKeyword:
		b, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		return Keyword(b), nil
	case TagSymbol:
		b, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		return Symbol(b), nil
	case TagUUID:
		b, err := d.readN(16)
		if err != nil {
			return nil, err
		}
		var id uuid.UUID
		copy(id[:], b)
		return id, nil
	case TagInstant:
		v, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(int64(v)).UTC(), nil
	case TagBytes:
		b, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		// mandatory copy, the view dies with the transaction
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case TagList:
		return d.decodeList()
	case TagMap:
		return d.decodeMap()
	case TagSet:
		return d.decodeSet()
	case TagInt16:
		v, err := d.readUint16()
		if err != nil {
			return nil, err
		}
		return int16(v), nil
	case TagInt8:
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		return int8(b), nil
	case TagFloat32:
		v, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(v), nil
	case TagChar:
		v, err := d.readUint16()
		if err != nil {
			return nil, err
		}
		return Char(v), nil
	case TagBigInt:
		b, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		return bytesToBigInt(b), nil
	case TagBigDec:
		scale, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		b, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		return BigDecimal{Unscaled: bytesToBigInt(b), Scale: int32(scale)}, nil
	case TagRatio:
		num, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		den, err := d.readBlob()
		if err != nil {
			return nil, err
		}
		return new(big.Rat).SetFrac(bytesToBigInt(num), bytesToBigInt(den)), nil
	case TagInt16Array:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		out := make([]int16, n)
		for i := range out {
			v, err := d.readUint16()
			if err != nil {
				return nil, err
			}
			out[i] = int16(v)
		}
		return out, nil
	case TagInt32Array:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			v, err := d.readUint32()
			if err != nil {
				return nil, err
			}
			out[i] = int32(v)
		}
		return out, nil
	case TagInt64Array:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			v, err := d.readUint64()
			if err != nil {
				return nil, err
			}
			out[i] = int64(v)
		}
		return out, nil
	case TagFloat32Array:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		out := make([]float32, n)
		for i := range out {
			v, err := d.readUint32()
			if err != nil {
				return nil, err
			}
			out[i] = math.Float32frombits(v)
		}
		return out, nil
	case TagFloat64Array:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i := range out {
			v, err := d.readUint64()
			if err != nil {
				return nil, err
			}
			out[i] = math.Float64frombits(v)
		}
		return out, nil
	case TagBoolArray:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		out := make([]bool, n)
		for i := range out {
			b, err := d.readByte()
			if err != nil {
				return nil, err
			}
			out[i] = b != 0
		}
		return out, nil
	case TagCharArray:
		n, err := d.readCount()
		if err != nil {
			return nil, err
		}
		out := make([]Char, n)
		for i := range out {
			v, err := d.readUint16()
			if err != nil {
				return nil, err
			}
			out[i] = Char(v)
		}
		return out, nil
	case TagInt32:
		v, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	default:
		if tag >= TagUserMin && d.reg != nil {
			if h, ok := d.reg.byTag[tag]; ok {
				return h.Decode(d)
			}
		}
		return nil, &UnknownTagError{Tag: tag}
	}
}

func (d *Decoder) decodeList() (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make(List, 0, n)
	for i := 0; i < n; i++ {
		el, err := d.Decode()
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func (d *Decoder) decodeMap() (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make(Map, n)
	for i := 0; i < n; i++ {
		k, err := d.Decode()
		if err != nil {
			return nil, err
		}
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, &UnsupportedTypeError{Value: k}
		}
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (d *Decoder) decodeSet() (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make(Set, n)
	for i := 0; i < n; i++ {
		el, err := d.Decode()
		if err != nil {
			return nil, err
		}
		if el != nil && !reflect.TypeOf(el).Comparable() {
			return nil, &UnsupportedTypeError{Value: el}
		}
		out[el] = struct{}{}
	}
	return out, nil
}

func (d *Decoder) enter() error {
	d.depth++
	if d.depth > MaxDepth {
		return ErrTooDeep
	}
	return nil
}

// --------------------------------------------------------------------------
// Primitive readers
// --------------------------------------------------------------------------

func (d *Decoder) readByte() (byte, error) {
	if d.pos+1 > len(d.data) {
		return 0, ErrTruncated
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

// readN returns a view into the input without copying.
func (d *Decoder) readN(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.data) {
		return nil, ErrTruncated
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) readUint16() (uint16, error) {
	b, err := d.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) readUint32() (uint32, error) {
	b, err := d.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) readUint64() (uint64, error) {
	b, err := d.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) readCount() (int, error) {
	v, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// readBlob reads a 4-byte length prefix and returns a view of that many bytes.
func (d *Decoder) readBlob() ([]byte, error) {
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	return d.readN(n)
}
