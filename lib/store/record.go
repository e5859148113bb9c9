package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// Record wrapper field symbols and well-known metadata keys.
const (
	fieldMeta  = codec.Symbol("meta")
	fieldValue = codec.Symbol("value")

	metaType      = codec.Keyword("type")
	metaKey       = codec.Keyword("key")
	metaLastWrite = codec.Keyword("last-write")

	// TypeEDN tags records holding structured values, TypeBinary records
	// holding raw bytes written through the binary operations.
	TypeEDN    = codec.Keyword("edn")
	TypeBinary = codec.Keyword("binary")
)

// newMeta builds the store-generated metadata for a write.
func newMeta(key any, typeTag codec.Keyword) codec.Map {
	return codec.Map{
		metaType:      typeTag,
		metaKey:       key,
		metaLastWrite: time.Now().UTC(),
	}
}

// encodeKey returns the codec encoding of a user key.
func (s *Store) encodeKey(key any) ([]byte, error) {
	b, err := codec.Encode(s.pool, s.reg, key)
	if err != nil {
		return nil, wrapErr(RetCInternal, "encoding key", err)
	}
	return b, nil
}

// encodeRecord serializes a wrapped {meta, value} record. The meta field is
// written first; the metadata-only projection relies on that order.
func (s *Store) encodeRecord(meta codec.Map, value any) ([]byte, error) {
	b, err := codec.EncodeWith(s.pool, s.reg, func(e *codec.Encoder) error {
		if err := e.WriteMapHeader(2); err != nil {
			return err
		}
		if err := e.Encode(fieldMeta); err != nil {
			return err
		}
		if err := e.Encode(meta); err != nil {
			return err
		}
		if err := e.Encode(fieldValue); err != nil {
			return err
		}
		return e.Encode(value)
	})
	if err != nil {
		return nil, wrapErr(RetCInternal, "encoding record", err)
	}
	return b, nil
}

// decodeRecord decodes raw bytes into (meta, value). Bytes produced by the
// raw API fail with RetCCrossAPI naming the key and the observed top-level
// fields.
func (s *Store) decodeRecord(key any, data []byte) (codec.Map, any, error) {
	v, err := codec.Decode(s.reg, data)
	if err != nil {
		return nil, nil, wrapErr(RetCInternal, "decoding record", err)
	}
	rec, ok := v.(codec.Map)
	if !ok {
		return nil, nil, crossAPIError(key, v)
	}
	if _, ok := rec[fieldMeta]; !ok {
		return nil, nil, crossAPIError(key, v)
	}
	meta, _ := rec[fieldMeta].(codec.Map)
	return meta, rec[fieldValue], nil
}

// crossAPIError builds the misuse error for a wrapped read of a raw record.
func crossAPIError(key any, observed any) *Error {
	fields := "none"
	if m, ok := observed.(codec.Map); ok {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, fmt.Sprint(k))
		}
		sort.Strings(names)
		fields = fmt.Sprint(names)
	}
	return NewError(RetCCrossAPI, fmt.Sprintf(
		"key %v holds a record without meta (top-level fields: %s); it was written by the raw API", key, fields))
}

// applyUpdater runs the optional single-entry meta updater over the entry's
// previous metadata. The fresh store-generated metadata is used when there
// is no updater or the updater returns nil.
func applyUpdater(up MetaUpdater, oldMeta codec.Map, fresh codec.Map) codec.Map {
	if up == nil {
		return fresh
	}
	if m := up(oldMeta); m != nil {
		return m
	}
	return fresh
}
