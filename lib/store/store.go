package store

import (
	"github.com/replikativ/konserve-lmdb/lib/backend"
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Exists reports whether key is present.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store) Exists(key any) (bool, error) {
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
		_, f, err := t.Get(k)
		found = f
		return err
	})
	if err != nil {
		return false, wrapErr(RetCInternal, "exists", err)
	}
	readOps.Inc()
	return found, nil
}

// Get returns the value stored under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store) Get(key any) (any, bool, error) {
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
		// decode inside the transaction: data is a view into the mapped
		// page and blobs are copied out by the decoder
		_, v, err := s.decodeRecord(key, data)
		if err != nil {
			return err
		}
		value = v
		found = true
		return nil
	})
	if err != nil {
		return nil, false, asStoreError("get", err)
	}
	readOps.Inc()
	return value, found, nil
}

// GetIn looks up a nested path; the first segment is the store key. Both a
// missing record and an unresolvable path yield def.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store) GetIn(path []any, def any) (any, error) {
	if len(path) == 0 {
		return nil, NewError(RetCInvalidArgument, "empty key path")
	}
	value, found, err := s.Get(path[0])
	if err != nil {
		return nil, err
	}
	if !found {
		return def, nil
	}
	sub, ok := getIn(value, path[1:])
	if !ok {
		return def, nil
	}
	return sub, nil
}

// GetMeta returns the metadata of key via the metadata-only projection; the
// value field is never decoded. Nil meta on a present key is valid.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store) GetMeta(key any) (codec.Map, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	kb, err := s.encodeKey(key)
	if err != nil {
		return nil, err
	}
	sc := s.env.Scratch()
	defer s.env.ReleaseScratch(sc)
	k := sc.SetKey(kb)

	var meta codec.Map
	err = s.env.View(func(t *backend.Txn) error {
		data, ok, err := t.Get(k)
		if err != nil || !ok {
			return err
		}
		m, isRecord, err := codec.DecodeMeta(s.reg, data)
		if err != nil {
			return wrapErr(RetCInternal, "decoding meta", err)
		}
		if !isRecord {
			return crossAPIError(key, nil)
		}
		meta = m
		return nil
	})
	if err != nil {
		return nil, asStoreError("get-meta", err)
	}
	readOps.Inc()
	return meta, nil
}

// MultiGet resolves several keys under a single read transaction; the caller
// observes one consistent snapshot. Missing keys are omitted.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store) MultiGet(keys []any) (map[any]any, error) {
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
			_, v, err := s.decodeRecord(key, data)
			if err != nil {
				return err
			}
			out[key] = v
		}
		return nil
	})
	if err != nil {
		return nil, asStoreError("multi-get", err)
	}
	readOps.Inc()
	return out, nil
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Assoc stores value under key, replacing any previous record.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) Assoc(key any, up MetaUpdater, value any) (any, any, error) {
	return s.AssocIn([]any{key}, up, value)
}

// AssocIn performs an atomic read-modify-write: the old record is read, the
// sub-value at path is replaced, and the record is written back inside one
// write transaction. No interleaving writer can change the observed old
// value.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) AssocIn(path []any, up MetaUpdater, value any) (any, any, error) {
	return s.rmw(path, up, func(any) any { return value }, true)
}

// Update transforms the whole value stored under key.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) Update(key any, up MetaUpdater, fn func(any) any) (any, any, error) {
	return s.UpdateIn([]any{key}, up, fn)
}

// UpdateIn transforms the sub-value at path with fn. fn receives nil when
// the path does not resolve.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) UpdateIn(path []any, up MetaUpdater, fn func(any) any) (any, any, error) {
	return s.rmw(path, up, fn, false)
}

// rmw is the shared atomic read-modify-write core of AssocIn and UpdateIn.
// replace distinguishes assoc (ignore the current sub-value) from update
// (feed it to fn).
func (s *Store) rmw(path []any, up MetaUpdater, fn func(any) any, replace bool) (any, any, error) {
	if err := s.guard(); err != nil {
		return nil, nil, err
	}
	if len(path) == 0 {
		return nil, nil, NewError(RetCInvalidArgument, "empty key path")
	}
	key := path[0]
	kb, err := s.encodeKey(key)
	if err != nil {
		return nil, nil, err
	}
	sc := s.env.Scratch()
	defer s.env.ReleaseScratch(sc)
	k := sc.SetKey(kb)

	var oldVal, newVal any
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

		var sub any
		if !replace {
			sub, _ = getIn(oldVal, path[1:])
		}
		newVal = assocIn(oldVal, path[1:], fn(sub))

		meta := applyUpdater(up, oldMeta, newMeta(key, TypeEDN))
		rb, err := s.encodeRecord(meta, newVal)
		if err != nil {
			return err
		}
		return t.Put(k, sc.SetVal(rb))
	})
	if err != nil {
		return nil, nil, asStoreError("assoc", err)
	}
	writeOps.Inc()
	return oldVal, newVal, nil
}

// Dissoc removes key, reporting whether it existed.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) Dissoc(key any) (bool, error) {
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

	var existed bool
	err = s.env.Update(func(t *backend.Txn) error {
		ex, err := t.Del(k)
		existed = ex
		return err
	})
	if err != nil {
		return false, asStoreError("dissoc", err)
	}
	deleteOps.Inc()
	return existed, nil
}

// MultiAssoc writes a batch of entries under one write transaction; readers
// never observe a partial batch. The per-entry meta updater receives the key,
// the logical type tag and the entry's previous metadata.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) MultiAssoc(entries map[any]any, up MetaUpdaterKV) (map[any]bool, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	out := make(map[any]bool, len(entries))
	err := s.env.Update(func(t *backend.Txn) error {
		sc := s.env.Scratch()
		defer s.env.ReleaseScratch(sc)
		for key, value := range entries {
			kb, err := s.encodeKey(key)
			if err != nil {
				return err
			}
			k := sc.SetKey(kb)

			var oldMeta codec.Map
			data, ok, err := t.Get(k)
			if err != nil {
				return err
			}
			if ok {
				m, isRecord, err := codec.DecodeMeta(s.reg, data)
				if err != nil {
					return wrapErr(RetCInternal, "decoding meta", err)
				}
				if !isRecord {
					return crossAPIError(key, nil)
				}
				oldMeta = m
			}

			meta := newMeta(key, TypeEDN)
			if up != nil {
				if m := up(key, TypeEDN, oldMeta); m != nil {
					meta = m
				}
			}
			rb, err := s.encodeRecord(meta, value)
			if err != nil {
				return err
			}
			if err := t.Put(k, sc.SetVal(rb)); err != nil {
				return err
			}
			out[key] = true
		}
		return nil
	})
	if err != nil {
		return nil, asStoreError("multi-assoc", err)
	}
	writeOps.Inc()
	return out, nil
}

// MultiDissoc removes a batch of keys under one write transaction.
//
// Thread-safety: This method is thread-safe; LMDB serializes writers.
func (s *Store) MultiDissoc(keys []any) (map[any]bool, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	out := make(map[any]bool, len(keys))
	err := s.env.Update(func(t *backend.Txn) error {
		sc := s.env.Scratch()
		defer s.env.ReleaseScratch(sc)
		for _, key := range keys {
			kb, err := s.encodeKey(key)
			if err != nil {
				return err
			}
			existed, err := t.Del(sc.SetKey(kb))
			if err != nil {
				return err
			}
			out[key] = existed
		}
		return nil
	})
	if err != nil {
		return nil, asStoreError("multi-dissoc", err)
	}
	deleteOps.Inc()
	return out, nil
}

// asStoreError passes typed store errors through and tags everything else as
// internal.
func asStoreError(op string, err error) error {
	if se, ok := err.(*Error); ok {
		return se
	}
	return wrapErr(RetCInternal, op, err)
}
