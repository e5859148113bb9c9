package backend

import (
	"os"

	"github.com/bmatsuo/lmdb-go/lmdb"
)

// Environment flag bits, re-exported so callers do not import the bindings.
// The values are LMDB's own and bit-or combinable.
const (
	FlagReadOnly    = lmdb.Readonly
	FlagNoSubdir    = lmdb.NoSubdir
	FlagNoSync      = lmdb.NoSync
	FlagWriteMap    = lmdb.WriteMap
	FlagMapAsync    = lmdb.MapAsync
	FlagNoTLS       = lmdb.NoTLS
	FlagNoReadahead = lmdb.NoReadahead
)

// DefaultMapSize is the memory-map size requested when none is configured.
const DefaultMapSize int64 = 1 << 30

// Options configures an environment at open time.
type Options struct {
	// MapSize is the LMDB memory-map size in bytes, DefaultMapSize if zero.
	MapSize int64
	// Flags are environment flag bits (FlagNoSync etc.).
	Flags uint
	// FileMode is the unix mode for created files, 0644 if zero.
	FileMode os.FileMode
}

// Env is one LMDB environment with its default database opened. All methods
// are safe for concurrent use.
type Env struct {
	env     *lmdb.Env
	dbi     lmdb.DBI
	scratch *scratchPool
	path    string
}

// Open opens (or creates the contents of) an LMDB environment at path. The
// directory itself must already exist; the store layer owns directory
// lifecycle. The default database is opened once and cached for the life of
// the environment.
func Open(path string, opts Options) (*Env, error) {
	env, err := lmdb.NewEnv()
	if err != nil {
		return nil, translate("env_create", err)
	}
	mapSize := opts.MapSize
	if mapSize == 0 {
		mapSize = DefaultMapSize
	}
	if err := env.SetMapSize(mapSize); err != nil {
		env.Close()
		return nil, translate("env_set_mapsize", err)
	}
	if err := env.SetMaxDBs(1); err != nil {
		env.Close()
		return nil, translate("env_set_maxdbs", err)
	}
	mode := opts.FileMode
	if mode == 0 {
		mode = 0644
	}
	if err := env.Open(path, opts.Flags, mode); err != nil {
		env.Close()
		return nil, translate("env_open", err)
	}

	e := &Env{env: env, scratch: newScratchPool(), path: path}

	// The database handle is opened inside a transaction; a writable
	// environment requests MDB_CREATE so a fresh file gets its database.
	if opts.Flags&FlagReadOnly != 0 {
		err = env.View(func(txn *lmdb.Txn) (err error) {
			e.dbi, err = txn.OpenRoot(0)
			return err
		})
	} else {
		err = env.Update(func(txn *lmdb.Txn) (err error) {
			e.dbi, err = txn.OpenRoot(lmdb.Create)
			return err
		})
	}
	if err != nil {
		env.Close()
		return nil, translate("dbi_open", err)
	}
	return e, nil
}

// Path returns the directory the environment lives in.
func (e *Env) Path() string { return e.path }

// Close releases the environment. Descriptors pooled for this environment
// become unreachable with it; they are never shared across environments.
func (e *Env) Close() error {
	e.scratch.clear()
	return translate("env_close", e.env.Close())
}

// Sync flushes buffered writes to disk with fsync.
func (e *Env) Sync() error {
	return translate("env_sync", e.env.Sync(true))
}

// Copy writes a consistent snapshot of the environment to path (hot backup).
func (e *Env) Copy(path string) error {
	return translate("env_copy", e.env.Copy(path))
}

// Entries returns the number of keys in the default database.
func (e *Env) Entries() (uint64, error) {
	stat, err := e.env.Stat()
	if err != nil {
		return 0, translate("env_stat", err)
	}
	return stat.Entries, nil
}

// MapSize returns the configured memory-map size.
func (e *Env) MapSize() (int64, error) {
	info, err := e.env.Info()
	if err != nil {
		return 0, translate("env_info", err)
	}
	return info.MapSize, nil
}

// View runs fn inside a read-only transaction. The transaction is always
// aborted on exit; read-only transactions are cheap MVCC snapshots, ending
// them by abort is the documented discipline. Zero-copy views handed out by
// Txn.Get are valid only inside fn.
func (e *Env) View(fn func(*Txn) error) error {
	return e.env.View(func(txn *lmdb.Txn) error {
		txn.RawRead = true
		return fn(&Txn{txn: txn, dbi: e.dbi})
	})
}

// Update runs fn inside a write transaction, committing on normal return and
// aborting when fn returns an error. LMDB serializes writers: concurrent
// Update calls block until the current holder finishes, which is what makes
// read-modify-write inside one Update atomic without user-space locks.
func (e *Env) Update(fn func(*Txn) error) error {
	return e.env.Update(func(txn *lmdb.Txn) error {
		txn.RawRead = true
		return fn(&Txn{txn: txn, dbi: e.dbi})
	})
}
