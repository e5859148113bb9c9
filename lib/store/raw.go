package store

import (
	"github.com/replikativ/konserve-lmdb/lib/backend"
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// rawStore is the raw API over the same environment as its parent Store. It
// writes the naked codec encoding of values, without the {meta, value}
// wrapper. Keys written through one surface must not be read through the
// other.
type rawStore struct {
	s *Store
}

var _ IRawStore = (*rawStore)(nil)

// Raw returns the raw API surface of the store. Both surfaces share the
// environment, buffer pool and registry; Release on either closes both.
func (s *Store) Raw() IRawStore {
	return &rawStore{s: s}
}

// NewRawStore opens the store at path and returns only its raw API surface,
// for consumers that never need per-entry metadata. The directory is created
// when absent, like Connect. Release closes the underlying environment.
func NewRawStore(path string, opts *Options) (IRawStore, error) {
	s, err := Connect(path, opts)
	if err != nil {
		return nil, err
	}
	return &rawStore{s: s}, nil
}

// Put stores the bare encoding of value under key.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (r *rawStore) Put(key, value any) error {
	s := r.s
	if err := s.guard(); err != nil {
		return err
	}
	kb, err := s.encodeKey(key)
	if err != nil {
		return err
	}
	vb, err := codec.Encode(s.pool, s.reg, value)
	if err != nil {
		return wrapErr(RetCInternal, "encoding value", err)
	}
	sc := s.env.Scratch()
	defer s.env.ReleaseScratch(sc)
	k := sc.SetKey(kb)
	v := sc.SetVal(vb)

	err = s.env.Update(func(t *backend.Txn) error {
		return t.Put(k, v)
	})
	if err != nil {
		return asStoreError("raw put", err)
	}
	writeOps.Inc()
	return nil
}

// Get returns the decoded value under key, or (nil, false, nil) on a miss.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rawStore) Get(key any) (any, bool, error) {
	s := r.s
	if err := s.guard(); err != nil {
		return nil, false, err
	}
	kb, err := s.encodeKey(key)
	if err != nil {
		return nil, false, err
	}
	sc := s.env.Scratch()
	defer s.env.ReleaseScratch(sc)
	k := sc.SetKey(kb)

	var (
		value any
		found bool
	)
	err = s.env.View(func(t *backend.Txn) error {
		data, ok, err := t.Get(k)
		if err != nil || !ok {
			return err
		}
		v, err := codec.Decode(s.reg, data)
		if err != nil {
			return wrapErr(RetCInternal, "decoding value", err)
		}
		value = v
		found = true
		return nil
	})
	if err != nil {
		return nil, false, asStoreError("raw get", err)
	}
	readOps.Inc()
	return value, found, nil
}

// Del removes key, reporting whether it existed.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (r *rawStore) Del(key any) (bool, error) {
	return r.s.Dissoc(key)
}

// MultiGet resolves several keys under one read transaction; missing keys
// are omitted.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rawStore) MultiGet(keys []any) (map[any]any, error) {
	s := r.s
	if err := s.guard(); err != nil {
		return nil, err
	}
	encoded := make([][]byte, len(keys))
	for i, key := range keys {
		kb, err := s.encodeKey(key)
		if err != nil {
			return nil, err
		}
		encoded[i] = kb
	}
	out := make(map[any]any, len(keys))
	err := s.env.View(func(t *backend.Txn) error {
		for i, key := range keys {
			data, ok, err := t.Get(encoded[i])
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			v, err := codec.Decode(s.reg, data)
			if err != nil {
				return wrapErr(RetCInternal, "decoding value", err)
			}
			out[key] = v
		}
		return nil
	})
	if err != nil {
		return nil, asStoreError("raw multi-get", err)
	}
	readOps.Inc()
	return out, nil
}

// MultiPut writes several entries under one write transaction.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (r *rawStore) MultiPut(entries map[any]any) error {
	s := r.s
	if err := s.guard(); err != nil {
		return err
	}
	err := s.env.Update(func(t *backend.Txn) error {
		sc := s.env.Scratch()
		defer s.env.ReleaseScratch(sc)
		for key, value := range entries {
			kb, err := s.encodeKey(key)
			if err != nil {
				return err
			}
			vb, err := codec.Encode(s.pool, s.reg, value)
			if err != nil {
				return wrapErr(RetCInternal, "encoding value", err)
			}
			if err := t.Put(sc.SetKey(kb), sc.SetVal(vb)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return asStoreError("raw multi-put", err)
	}
	writeOps.Inc()
	return nil
}

// Release closes the shared store.
func (r *rawStore) Release() error {
	return r.s.Release()
}
