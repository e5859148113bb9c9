// Package codec implements the self-describing binary serialization format
// used for both keys and values of the store. Every encoded value starts with
// a one-byte tag followed by a tag-specific body; integers are big-endian and
// length-prefixed blobs carry a 4-byte big-endian length. A decoder consumes
// exactly the bytes the encoder wrote, so values can be concatenated without
// additional framing.
//
// Key Features:
//   - Fixed tag assignment that is part of the on-disk contract (see tags.go)
//   - Deterministic encodings for the primitive types, making encoded keys
//     byte-comparable
//   - Zero-copy decoding of scalars and primitive arrays directly from
//     memory-mapped input; string and byte blobs are copied because they
//     outlive the read transaction
//   - Per-store extension types via a Registry of user handlers (tags >= 0x40)
//   - Metadata-only projection that skips a record's value field entirely
//
// Value Model:
//
//	The codec works over Go values. The built-in cases are:
//
//	  nil, bool, int/int8/int16/int32/int64, float32/float64,
//	  string, Keyword, Symbol, Char, uuid.UUID, time.Time, []byte,
//	  *big.Int, BigDecimal, *big.Rat,
//	  List, Map, Set,
//	  []int16, []int32, []int64, []float32, []float64, []bool, []Char
//
//	Anything else must be covered by a registered handler, otherwise encoding
//	fails with an UnsupportedTypeError.
//
// Thread Safety:
//
//	Encode and Decode are pure functions over their inputs. A Registry is
//	immutable after construction and can be shared freely.
package codec
