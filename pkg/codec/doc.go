// Package codec provides the two binary formats gridstore writes to disk.
//
// # Log records
//
// The log engine in package store appends records in this layout:
//
//	[CRC32(4)][Kind(1)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
//
// All integers are little-endian. Kind is KindPut or KindDelete, so an empty
// value is a legal put (group markers are empty) and deletions are explicit.
// The CRC32 (IEEE) covers every header field after the checksum plus the key
// and value bytes. The header is HeaderSize (21) bytes.
//
// # Arrays
//
// Every dataset in a container is a typed, fixed-length array:
//
//	[Magic(2) "GA"][DType(1)][Flags(1)][Count(8)][Elements]
//
// DType is DTypeInt32 or DTypeFloat64. When Flags has the zstd bit set the
// element bytes are one zstd frame; ArrayCodec compresses payloads at or
// above the threshold given to WithCompression. The high four bits of Flags
// hold a Tag chosen by the caller of EncodeTaggedFloat64s or
// EncodeTaggedInt32s; plain encodes write zero. Decode checks that the
// element bytes match Count and reports ErrLengthMismatch otherwise, and
// reading an array as the wrong element type reports ErrDTypeMismatch.
//
// PeekHeader returns the element count without decoding, which backs the
// cheap length queries of the container API.
//
// # Usage
//
//	ac := codec.NewArrayCodec(codec.WithCompression(4096))
//	payload, err := ac.EncodeFloat64s(xs)
//	...
//	arr, err := ac.Decode(payload)
//	xs, err = arr.Float64s()
package codec
