package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DType tags the element type of an encoded array
type DType uint8

const (
	DTypeInt32   DType = 1
	DTypeFloat64 DType = 2
)

func (d DType) String() string {
	switch d {
	case DTypeInt32:
		return "int32"
	case DTypeFloat64:
		return "float64"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

// Size returns the width of one element in bytes
func (d DType) Size() int {
	switch d {
	case DTypeInt32:
		return 4
	case DTypeFloat64:
		return 8
	default:
		return 0
	}
}

// Array payload layout:
//
//	[Magic(2) "GA"][DType(1)][Flags(1)][Count(8)][Elements...]
//
// Elements are little-endian. With flagZstd set the element bytes are a
// single zstd frame. The high four bits of Flags hold the array's Tag.
const (
	ArrayHeaderSize = 12
	flagZstd        = 0x01
	tagShift        = 4
)

// Tag is a caller-defined label stored in the array header. Zero is the
// default for untagged arrays.
type Tag uint8

// MaxTag is the largest tag the header can hold
const MaxTag Tag = 0x0f

var arrayMagic = [2]byte{'G', 'A'}

var (
	ErrNotArray        = errors.New("payload is not an encoded array")
	ErrDTypeMismatch   = errors.New("array element type mismatch")
	ErrLengthMismatch  = errors.New("array payload length does not match element count")
	ErrUnsupportedType = errors.New("unsupported array element type")
	ErrInvalidTag      = errors.New("array tag out of range")
)

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// EncodeAll and DecodeAll are safe for concurrent use, so one pair serves
// every codec in the process.
func zstdCoders() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil)
	})
	return zstdEnc, zstdDec, zstdErr
}

// ArrayCodec converts typed slices to and from array payloads
type ArrayCodec struct {
	compressMin int
}

// ArrayOption configures an ArrayCodec
type ArrayOption func(*ArrayCodec)

// WithCompression compresses element data of at least minBytes with zstd.
// A value <= 0 disables compression.
func WithCompression(minBytes int) ArrayOption {
	return func(c *ArrayCodec) {
		c.compressMin = minBytes
	}
}

// NewArrayCodec creates an array codec
func NewArrayCodec(opts ...ArrayOption) *ArrayCodec {
	c := &ArrayCodec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EncodeFloat64s encodes a real-valued array
func (c *ArrayCodec) EncodeFloat64s(values []float64) ([]byte, error) {
	return c.EncodeTaggedFloat64s(0, values)
}

// EncodeTaggedFloat64s encodes a real-valued array carrying tag
func (c *ArrayCodec) EncodeTaggedFloat64s(tag Tag, values []float64) ([]byte, error) {
	raw := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	return c.frame(DTypeFloat64, tag, len(values), raw)
}

// EncodeInt32s encodes an integer array
func (c *ArrayCodec) EncodeInt32s(values []int32) ([]byte, error) {
	return c.EncodeTaggedInt32s(0, values)
}

// EncodeTaggedInt32s encodes an integer array carrying tag
func (c *ArrayCodec) EncodeTaggedInt32s(tag Tag, values []int32) ([]byte, error) {
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	return c.frame(DTypeInt32, tag, len(values), raw)
}

func (c *ArrayCodec) frame(dtype DType, tag Tag, count int, raw []byte) ([]byte, error) {
	if tag > MaxTag {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTag, tag)
	}
	flags := byte(tag) << tagShift
	body := raw
	if c.compressMin > 0 && len(raw) >= c.compressMin {
		enc, _, err := zstdCoders()
		if err != nil {
			return nil, fmt.Errorf("zstd init: %w", err)
		}
		body = enc.EncodeAll(raw, make([]byte, 0, len(raw)/2))
		flags |= flagZstd
	}

	buf := make([]byte, ArrayHeaderSize+len(body))
	buf[0], buf[1] = arrayMagic[0], arrayMagic[1]
	buf[2] = byte(dtype)
	buf[3] = flags
	binary.LittleEndian.PutUint64(buf[4:], uint64(count))
	copy(buf[ArrayHeaderSize:], body)
	return buf, nil
}

// ArrayHeader is the fixed prefix of an encoded array
type ArrayHeader struct {
	DType      DType
	Count      int
	Compressed bool
	Tag        Tag
}

// IsArray reports whether data starts with an array header
func IsArray(data []byte) bool {
	return len(data) >= ArrayHeaderSize && data[0] == arrayMagic[0] && data[1] == arrayMagic[1]
}

// PeekHeader reads the header only, so a length query need not decode elements
func PeekHeader(data []byte) (ArrayHeader, error) {
	if !IsArray(data) {
		return ArrayHeader{}, ErrNotArray
	}
	dtype := DType(data[2])
	if dtype.Size() == 0 {
		return ArrayHeader{}, fmt.Errorf("%w: %s", ErrUnsupportedType, dtype)
	}
	count := binary.LittleEndian.Uint64(data[4:12])
	if count > math.MaxInt32 {
		return ArrayHeader{}, fmt.Errorf("%w: count %d", ErrLengthMismatch, count)
	}
	return ArrayHeader{
		DType:      dtype,
		Count:      int(count),
		Compressed: data[3]&flagZstd != 0,
		Tag:        Tag(data[3] >> tagShift),
	}, nil
}

// Array is a decoded payload whose element bytes are validated against Count
type Array struct {
	ArrayHeader
	raw []byte
}

// Decode validates and unpacks an array payload
func (c *ArrayCodec) Decode(data []byte) (*Array, error) {
	hdr, err := PeekHeader(data)
	if err != nil {
		return nil, err
	}

	raw := data[ArrayHeaderSize:]
	if hdr.Compressed {
		_, dec, err := zstdCoders()
		if err != nil {
			return nil, fmt.Errorf("zstd init: %w", err)
		}
		raw, err = dec.DecodeAll(raw, make([]byte, 0, hdr.Count*hdr.DType.Size()))
		if err != nil {
			return nil, fmt.Errorf("decompress array: %w", err)
		}
	}

	if want := hdr.Count * hdr.DType.Size(); len(raw) != want {
		return nil, fmt.Errorf("%w: %d bytes for %d x %s", ErrLengthMismatch, len(raw), hdr.Count, hdr.DType)
	}
	return &Array{ArrayHeader: hdr, raw: raw}, nil
}

// Float64s returns the elements of a real-valued array
func (a *Array) Float64s() ([]float64, error) {
	if a.DType != DTypeFloat64 {
		return nil, fmt.Errorf("%w: stored %s, requested float64", ErrDTypeMismatch, a.DType)
	}
	out := make([]float64, a.Count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(a.raw[i*8:]))
	}
	return out, nil
}

// Int32s returns the elements of an integer array
func (a *Array) Int32s() ([]int32, error) {
	if a.DType != DTypeInt32 {
		return nil, fmt.Errorf("%w: stored %s, requested int32", ErrDTypeMismatch, a.DType)
	}
	out := make([]int32, a.Count)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(a.raw[i*4:]))
	}
	return out, nil
}
