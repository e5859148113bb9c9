// Package store implements the embedded key-value store on top of an LMDB
// environment. It exposes two API surfaces over the same files:
//
//   - The wrapped API (Store): every on-disk value is a structured record
//     {meta, value} carrying per-entry metadata (logical type tag, last-write
//     timestamp, user key). It supports nested-path read/modify/write, binary
//     values, multi-key atomic batches and key enumeration with metadata-only
//     projection.
//
//   - The raw API (IRawStore): the on-disk value is the bare codec encoding of
//     the user datum, for performance-critical consumers that do not need
//     per-entry metadata.
//
// The two surfaces are not interoperable on the same key: a wrapped read of a
// record written by the raw API fails with a CrossAPI error rather than
// returning garbage.
//
// Key Components:
//
//   - Error System: a structured error reporting mechanism using typed error
//     codes and descriptive messages (see Error and the RetC* codes), in the
//     same shape for both API surfaces.
//
//   - Lifecycle: Connect opens (creating the directory when absent), Create
//     insists on a fresh directory, Release closes the environment, and
//     Delete removes a closed store from disk. Operations on a released
//     store fail fast with RetCClosed.
//
//   - Write Hooks: a concurrent table of named hooks the store exposes but
//     never invokes itself; an observability extension point for callers.
//
// Concurrency:
//
//	All operations are safe to call from multiple threads. The store takes
//	no user-space locks: LMDB serializes write transactions internally and
//	read transactions are MVCC snapshots. Composite read-modify-write
//	operations (AssocIn, UpdateIn, BAssoc, MultiAssoc) run their read and
//	write inside a single write transaction and are therefore atomic.
package store
