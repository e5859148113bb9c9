package store

import (
	"fmt"
	"time"

	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// --------------------------------------------------------------------------
// Interface Definitions
// --------------------------------------------------------------------------

// MetaUpdater transforms the previous metadata of an entry into the metadata
// to be written. A nil updater keeps the store-generated metadata untouched.
// oldMeta is nil when the entry did not exist before.
type MetaUpdater func(oldMeta codec.Map) codec.Map

// MetaUpdaterKV is the per-entry updater used by MultiAssoc. It additionally
// receives the entry key and the logical type tag ("edn" or "binary"). The
// richer signature is intentional and differs from MetaUpdater.
type MetaUpdaterKV func(key any, typeTag codec.Keyword, oldMeta codec.Map) codec.Map

// KeyInfo is one row of a key enumeration: the user key plus the cheap
// metadata projection (logical type and last-write instant).
type KeyInfo struct {
	Key       any
	Type      codec.Keyword
	LastWrite time.Time
}

// IStore is the wrapped API surface. Every stored value is a {meta, value}
// record; reads of records lacking meta fail with RetCCrossAPI.
//
// All operations are safe for concurrent use from multiple goroutines.
// Atomicity is stated per operation.
type IStore interface {
	// Exists reports whether key is present. Runs in a read transaction.
	Exists(key any) (bool, error)
	// Get returns the value stored under key, or (nil, false, nil) on a miss.
	Get(key any) (value any, found bool, err error)
	// GetIn looks up a nested path. The first path segment is the store key,
	// the rest descends into the decoded value. A missing record yields def.
	GetIn(path []any, def any) (any, error)
	// GetMeta returns the metadata of key without decoding its value, nil
	// when the key is absent. Nil meta on a present key is a valid state.
	GetMeta(key any) (codec.Map, error)
	// Assoc stores value under key, replacing any previous record. Returns
	// the old and new value. Atomic read-modify-write.
	Assoc(key any, up MetaUpdater, value any) (oldVal, newVal any, err error)
	// AssocIn replaces the sub-value at path inside the record, creating
	// intermediate mappings as needed. A single-element path replaces the
	// entire stored value. Returns the old and new full value.
	AssocIn(path []any, up MetaUpdater, value any) (oldVal, newVal any, err error)
	// Update transforms the value stored under key with fn (nil if absent).
	Update(key any, up MetaUpdater, fn func(any) any) (oldVal, newVal any, err error)
	// UpdateIn transforms the sub-value at path with fn (nil if absent).
	UpdateIn(path []any, up MetaUpdater, fn func(any) any) (oldVal, newVal any, err error)
	// Dissoc removes key, reporting whether it existed.
	Dissoc(key any) (bool, error)
	// MultiGet resolves several keys under one read transaction so the caller
	// observes a consistent snapshot. Missing keys are omitted from the
	// result; only the value component is returned.
	MultiGet(keys []any) (map[any]any, error)
	// MultiAssoc writes several entries under one write transaction; no
	// reader observes a partial batch. Returns key -> true for each entry.
	MultiAssoc(entries map[any]any, up MetaUpdaterKV) (map[any]bool, error)
	// MultiDissoc removes several keys under one write transaction and
	// reports key -> existed.
	MultiDissoc(keys []any) (map[any]bool, error)
	// Keys enumerates all keys with their metadata projection. The value
	// field of each record is never decoded.
	Keys() ([]KeyInfo, error)
	// BGet reads a binary record and invokes sink synchronously with a view
	// of the stored bytes. The view is only valid during the call. On a miss
	// sink is not invoked and BGet returns (false, nil).
	BGet(key any, sink func(value []byte) error) (bool, error)
	// BAssoc coerces value to bytes (see CoerceBytes) and stores it as a
	// binary record. Returns the old value and the new bytes.
	BAssoc(key any, up MetaUpdater, value any) (oldVal any, written []byte, err error)
	// Hooks exposes the write-hooks table. The store never invokes hooks.
	Hooks() *Hooks
	// Sync flushes buffered writes to disk.
	Sync() error
	// Info returns a snapshot of store metadata.
	Info() (Info, error)
	// Copy writes a consistent snapshot of the store to an empty directory.
	Copy(path string) error
	// Release closes the store. Subsequent operations fail with RetCClosed.
	Release() error
}

// IRawStore is the raw API surface: the codec encoding of the user value is
// stored without the record wrapper.
type IRawStore interface {
	Put(key, value any) error
	Get(key any) (value any, found bool, err error)
	Del(key any) (bool, error)
	MultiGet(keys []any) (map[any]any, error)
	MultiPut(entries map[any]any) error
	Release() error
}

// Info describes a store at a point in time.
type Info struct {
	Path    string `json:"path"`
	Entries uint64 `json:"entries"`
	MapSize int64  `json:"map_size"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// RetCode classifies store failures.
type RetCode uint64

const (
	RetCSuccess         RetCode = iota // 0: operation succeeded
	RetCInternal                       // 1: internal failure (LMDB or codec)
	RetCCrossAPI                       // 2: wrapped read of a raw record
	RetCBinaryInput                    // 3: BAssoc input not coercible to bytes
	RetCNotBinary                      // 4: BGet on a non-binary value
	RetCStoreExists                    // 5: Create found an existing directory
	RetCStoreMissing                   // 6: read-only Connect found no store
	RetCClosed                         // 7: operation on a released store
	RetCInvalidArgument                // 8: malformed input (empty path, ...)
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternal:
		return "Internal"
	case RetCCrossAPI:
		return "CrossAPI"
	case RetCBinaryInput:
		return "BinaryInput"
	case RetCNotBinary:
		return "NotBinary"
	case RetCStoreExists:
		return "StoreExists"
	case RetCStoreMissing:
		return "StoreMissing"
	case RetCClosed:
		return "Closed"
	case RetCInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Error wraps a return code and a message, optionally chaining the underlying
// cause so callers can unwrap down to backend or codec errors.
type Error struct {
	Code RetCode
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// wrapErr tags an underlying failure with a return code.
func wrapErr(code RetCode, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}
