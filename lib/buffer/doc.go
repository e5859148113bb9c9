// Package buffer provides reusable, capacity-bounded byte buffers for the
// codec encoding path. Buffers are handed out exclusively: a buffer is owned
// by at most one caller between Acquire and Release.
//
// Key Features:
//   - Lock-free pooling based on atomic slot claims (no mutex on the hot path)
//   - Fixed-capacity buffers with explicit overflow reporting, so the encoding
//     driver can implement its own growth policy
//   - Bounded idle footprint: buffers larger than MaxPooled bytes are never
//     returned to the pool
//
// Implementation Details:
//
//   - Claiming: Acquire scans the slot array for the first buffer with enough
//     capacity and removes it with a compare-and-swap. Two concurrent callers
//     can therefore never observe the same buffer.
//
//   - Releasing: Release clears the buffer and stores it into the first empty
//     slot, again with a compare-and-swap. If every slot is occupied, or the
//     buffer exceeds MaxPooled, the buffer is dropped for the GC to collect.
//
// Thread Safety:
//
//	All pool operations are safe for concurrent use. A Buffer itself is not
//	concurrency-safe; it belongs to exactly one goroutine while acquired.
package buffer
