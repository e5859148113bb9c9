package store

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/replikativ/konserve-lmdb/lib/backend"
	"github.com/replikativ/konserve-lmdb/lib/buffer"
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// Store is the wrapped API implementation. Create instances with Connect or
// Create; the zero value is not usable.
type Store struct {
	env    *backend.Env
	pool   *buffer.Pool
	reg    *codec.Registry
	hooks  *Hooks
	opts   Options
	closed atomic.Bool
}

var _ IStore = (*Store)(nil)

// Connect opens the store at path, creating the directory when it does not
// exist yet. With Options.ReadOnly set, a missing directory fails with
// RetCStoreMissing instead.
func Connect(path string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if opts.ReadOnly {
			return nil, NewError(RetCStoreMissing, fmt.Sprintf("no store at %q", path))
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, wrapErr(RetCInternal, "creating store directory", err)
		}
	}
	return open(path, opts)
}

// Create opens a fresh store at path and fails with RetCStoreExists when the
// directory is already present.
func Create(path string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if _, err := os.Stat(path); err == nil {
		return nil, NewError(RetCStoreExists, fmt.Sprintf("store at %q already exists", path))
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, wrapErr(RetCInternal, "creating store directory", err)
	}
	return open(path, opts)
}

func open(path string, opts *Options) (*Store, error) {
	env, err := backend.Open(path, opts.backendOptions())
	if err != nil {
		return nil, wrapErr(RetCInternal, "opening environment", err)
	}
	return &Store{
		env:   env,
		pool:  buffer.NewPool(),
		reg:   opts.Registry,
		hooks: newHooks(),
		opts:  *opts,
	}, nil
}

// Delete removes a released store's directory and all its contents. Calling
// it on a store that is still open is undefined; release first.
func Delete(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return wrapErr(RetCInternal, "deleting store directory", err)
	}
	return nil
}

// Release closes the store. The buffer pool is dropped with it, so teardown
// releases all pooled memory deterministically.
func (s *Store) Release() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.pool.Clear()
	if err := s.env.Close(); err != nil {
		return wrapErr(RetCInternal, "closing environment", err)
	}
	return nil
}

// guard fails fast when the store has been released.
func (s *Store) guard() error {
	if s.closed.Load() {
		return NewError(RetCClosed, "store is released")
	}
	return nil
}

// Sync flushes buffered writes to disk with fsync. Useful together with
// Options.NoSync.
func (s *Store) Sync() error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.env.Sync(); err != nil {
		return wrapErr(RetCInternal, "syncing environment", err)
	}
	return nil
}

// Info returns a snapshot of store metadata.
func (s *Store) Info() (Info, error) {
	if err := s.guard(); err != nil {
		return Info{}, err
	}
	entries, err := s.env.Entries()
	if err != nil {
		return Info{}, wrapErr(RetCInternal, "reading stat", err)
	}
	mapSize, err := s.env.MapSize()
	if err != nil {
		return Info{}, wrapErr(RetCInternal, "reading info", err)
	}
	return Info{Path: s.env.Path(), Entries: entries, MapSize: mapSize}, nil
}

// Copy writes a consistent hot backup of the store into path, which must be
// an existing empty directory.
func (s *Store) Copy(path string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.env.Copy(path); err != nil {
		return wrapErr(RetCInternal, "copying environment", err)
	}
	return nil
}

// Hooks exposes the write-hooks table.
func (s *Store) Hooks() *Hooks { return s.hooks }
