package backend

import (
	"github.com/bmatsuo/lmdb-go/lmdb"
)

// Txn is a transaction scoped to one Env.View or Env.Update call. It must not
// escape the callback it was handed to.
type Txn struct {
	txn *lmdb.Txn
	dbi lmdb.DBI
}

// Get looks up key. A hit returns a zero-copy view into the mapped page
// cache, valid only until the transaction ends. A miss returns (nil, false,
// nil); NOTFOUND is not an error.
func (t *Txn) Get(key []byte) ([]byte, bool, error) {
	v, err := t.txn.Get(t.dbi, key)
	if lmdb.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translate("get", err)
	}
	return v, true, nil
}

// Put stores val under key, replacing any existing value.
func (t *Txn) Put(key, val []byte) error {
	return translate("put", t.txn.Put(t.dbi, key, val, 0))
}

// Del removes key. It reports whether the key existed.
func (t *Txn) Del(key []byte) (bool, error) {
	err := t.txn.Del(t.dbi, key, nil)
	if lmdb.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, translate("del", err)
	}
	return true, nil
}

// Scan walks every key-value pair in key order, invoking fn with zero-copy
// views. Returning a non-nil error from fn stops the walk and propagates.
func (t *Txn) Scan(fn func(key, val []byte) error) error {
	cur, err := t.txn.OpenCursor(t.dbi)
	if err != nil {
		return translate("cursor_open", err)
	}
	defer cur.Close()

	for op := uint(lmdb.First); ; op = lmdb.Next {
		k, v, err := cur.Get(nil, nil, op)
		if lmdb.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return translate("cursor_get", err)
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
}
