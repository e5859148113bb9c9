package store

import (
	"github.com/replikativ/konserve-lmdb/lib/backend"
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// Options configures a store at open time.
type Options struct {
	// MapSize is the LMDB memory-map size in bytes (default 1 GiB).
	MapSize int64

	// ReadOnly opens the environment read-only. Connecting read-only to a
	// missing store fails with RetCStoreMissing instead of creating it.
	ReadOnly bool

	// NoSync disables fsync on commit. Use Sync for explicit flushes.
	NoSync bool

	// WriteMap uses a writable memory map instead of malloc+write.
	WriteMap bool

	// MapAsync uses asynchronous flushes with WriteMap.
	MapAsync bool

	// NoReadahead turns off OS readahead, useful for random access patterns
	// over databases larger than RAM.
	NoReadahead bool

	// Registry supplies user-extension type handlers. All reads and writes
	// on the store use it; nil means built-in types only.
	Registry *codec.Registry

	// SkipAppendLog filters UUID-keyed entries whose metadata type is
	// "append-log" out of Keys enumerations. Those entries belong to an
	// external append-log subsystem layered on the same environment.
	SkipAppendLog bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() *Options {
	return &Options{
		MapSize: backend.DefaultMapSize,
	}
}

// backendOptions translates store options into environment options.
func (o *Options) backendOptions() backend.Options {
	var flags uint
	if o.ReadOnly {
		flags |= backend.FlagReadOnly
	}
	if o.NoSync {
		flags |= backend.FlagNoSync
	}
	if o.WriteMap {
		flags |= backend.FlagWriteMap
	}
	if o.MapAsync {
		flags |= backend.FlagMapAsync
	}
	if o.NoReadahead {
		flags |= backend.FlagNoReadahead
	}
	return backend.Options{
		MapSize: o.MapSize,
		Flags:   flags,
	}
}
