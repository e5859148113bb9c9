// Package backend wraps the LMDB C bindings (github.com/bmatsuo/lmdb-go)
// with the typed surface the store layer builds on: environment lifecycle,
// scoped transactions, error translation and pooled key/value staging.
//
// Key Features:
//   - Scoped transactions: View runs a read-only transaction that is always
//     aborted on exit, Update runs a write transaction that commits on normal
//     return and aborts when an error propagates through it. Release on every
//     exit path is structural, not a convention.
//   - Zero-copy reads: transactions run with raw reads enabled, so Get hands
//     out slices pointing into the memory-mapped page cache. Such a view is
//     valid only until its transaction ends and must not be retained.
//   - Error translation: every nonzero LMDB return code other than NOTFOUND
//     becomes an *Error carrying the originating call name, the numeric code
//     and the strerror description. NOTFOUND is never surfaced as an error;
//     it is reported as a miss.
//   - Pooled staging: encoded key and value bytes are copied into reusable
//     per-environment staging pairs (see Scratch), bounding per-operation
//     allocation on the hot path.
//
// Concurrency:
//
//	The environment is safe for use from any number of goroutines. LMDB
//	allows at most one live write transaction per environment; concurrent
//	Update calls block until the current writer commits or aborts. Read-only
//	transactions are MVCC snapshots and never block writers.
package backend
