package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/replikativ/konserve-lmdb/lib/backend"
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// appendLogType tags entries owned by an external append-log subsystem that
// shares the environment. They are filtered out of enumerations when
// Options.SkipAppendLog is set.
const appendLogType = codec.Keyword("append-log")

// Keys walks all keys in a single read transaction, decoding only the key
// and the metadata projection of each record; value fields are skipped, not
// materialized. Entries written by the raw API carry no metadata and are
// omitted.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Store) Keys() ([]KeyInfo, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	infos := make([]KeyInfo, 0)
	err := s.env.View(func(txn *backend.Txn) error {
		return txn.Scan(func(kb, vb []byte) error {
			key, err := codec.Decode(s.reg, kb)
			if err != nil {
				return wrapErr(RetCInternal, "decoding key", err)
			}
			meta, isRecord, err := codec.DecodeMeta(s.reg, vb)
			if err != nil {
				return wrapErr(RetCInternal, "decoding meta", err)
			}
			if !isRecord {
				return nil
			}
			info := KeyInfo{Key: key}
			if typ, ok := meta[metaType].(codec.Keyword); ok {
				info.Type = typ
			}
			if ts, ok := meta[metaLastWrite].(time.Time); ok {
				info.LastWrite = ts
			}
			if s.opts.SkipAppendLog && info.Type == appendLogType {
				if _, isUUID := key.(uuid.UUID); isUUID {
					return nil
				}
			}
			infos = append(infos, info)
			return nil
		})
	})
	if err != nil {
		return nil, asStoreError("keys", err)
	}
	enumOps.Inc()
	return infos, nil
}
