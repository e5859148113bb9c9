package store

import (
	"fmt"
	"io"
	"os"

	"github.com/replikativ/konserve-lmdb/lib/backend"
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// Path marks a string as a filesystem path for BAssoc: the file's contents
// become the stored bytes.
type Path string

// CoerceBytes converts the supported binary input shapes to a byte slice:
// byte slices pass through, strings are taken as UTF-8, readers are drained,
// and Path values are read from the filesystem.
func CoerceBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case Path:
		b, err := os.ReadFile(string(x))
		if err != nil {
			return nil, wrapErr(RetCBinaryInput, fmt.Sprintf("reading %q", string(x)), err)
		}
		return b, nil
	case io.Reader:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, wrapErr(RetCBinaryInput, "draining reader", err)
		}
		return b, nil
	default:
		return nil, NewError(RetCBinaryInput, fmt.Sprintf("cannot coerce %T to bytes", v))
	}
}

// BGet reads a binary record and invokes sink with a zero-copy view of the
// stored bytes. The view points into the memory-mapped page and is valid only
// for the duration of the call; sink must copy if it needs the bytes later.
// On a miss sink is not invoked and BGet returns (false, nil).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store) BGet(key any, sink func(value []byte) error) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	kb, err := s.encodeKey(key)
	if err != nil {
		return false, err
	}
	sc := s.env.Scratch()
	defer s.env.ReleaseScratch(sc)
	k := sc.SetKey(kb)

	var found bool
	err = s.env.View(func(t *backend.Txn) error {
		data, ok, err := t.Get(k)
		if err != nil || !ok {
			return err
		}
		found = true
		view, state, err := codec.ValueView(s.reg, data)
		if err != nil {
			return wrapErr(RetCInternal, "reading binary value", err)
		}
		switch state {
		case codec.ViewNotRecord:
			return crossAPIError(key, nil)
		case codec.ViewNotBytes:
			return NewError(RetCNotBinary, fmt.Sprintf("value under key %v is not binary", key))
		}
		return sink(view)
	})
	if err != nil {
		return found, asStoreError("bget", err)
	}
	readOps.Inc()
	return found, nil
}

// BAssoc coerces value to bytes and stores it as a binary record, atomically
// with the read of the previous record.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) BAssoc(key any, up MetaUpdater, value any) (any, []byte, error) {
	if err := s.guard(); err != nil {
		return nil, nil, err
	}
	bytes, err := CoerceBytes(value)
	if err != nil {
		return nil, nil, err
	}
	kb, err := s.encodeKey(key)
	if err != nil {
		return nil, nil, err
	}
	sc := s.env.Scratch()
	defer s.env.ReleaseScratch(sc)
	k := sc.SetKey(kb)

	var oldVal any
	err = s.env.Update(func(t *backend.Txn) error {
		var oldMeta codec.Map
		data, ok, err := t.Get(k)
		if err != nil {
			return err
		}
		if ok {
			oldMeta, oldVal, err = s.decodeRecord(key, data)
			if err != nil {
				return err
			}
		}
		meta := applyUpdater(up, oldMeta, newMeta(key, TypeBinary))
		rb, err := s.encodeRecord(meta, bytes)
		if err != nil {
			return err
		}
		return t.Put(k, sc.SetVal(rb))
	})
	if err != nil {
		return nil, nil, asStoreError("bassoc", err)
	}
	writeOps.Inc()
	return oldVal, bytes, nil
}
