package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"time"
)

// RecordKind tells a live value apart from a deletion marker
type RecordKind uint8

const (
	KindPut    RecordKind = 1
	KindDelete RecordKind = 2
)

// HeaderSize is CRC32(4) + Kind(1) + KeySize(4) + ValueSize(4) + Timestamp(8)
const HeaderSize = 21

var (
	ErrShortRecord   = errors.New("data too short for record")
	ErrInvalidKind   = errors.New("invalid record kind")
	ErrRecordTooLong = errors.New("key or value too large")
)

func (k RecordKind) String() string {
	switch k {
	case KindPut:
		return "put"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Record is one framed entry of the append-only log
type Record struct {
	CRC32     uint32     // CRC32 checksum for integrity
	Kind      RecordKind // put or delete
	KeySize   uint32
	ValueSize uint32
	Timestamp uint64 // Unix timestamp in nanoseconds
	Key       []byte
	Value     []byte
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a record of the given kind.
// Format: [CRC32(4)][Kind(1)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
func (c *RecordCodec) Encode(kind RecordKind, key, value []byte) ([]byte, error) {
	r, err := NewRecord(kind, key, value)
	if err != nil {
		return nil, err
	}
	r.CRC32 = r.calculateCRC32()

	buf := make([]byte, r.Size())
	binary.LittleEndian.PutUint32(buf[0:], r.CRC32)
	buf[4] = byte(r.Kind)
	binary.LittleEndian.PutUint32(buf[5:], r.KeySize)
	binary.LittleEndian.PutUint32(buf[9:], r.ValueSize)
	binary.LittleEndian.PutUint64(buf[13:], r.Timestamp)
	copy(buf[HeaderSize:], r.Key)
	copy(buf[HeaderSize+int(r.KeySize):], r.Value)

	return buf, nil
}

// DecodeHeader reads the fixed header fields without touching key or value
func (c *RecordCodec) DecodeHeader(header []byte) (*Record, error) {
	if len(header) < HeaderSize {
		return nil, ErrShortRecord
	}
	r := &Record{
		CRC32:     binary.LittleEndian.Uint32(header[0:4]),
		Kind:      RecordKind(header[4]),
		KeySize:   binary.LittleEndian.Uint32(header[5:9]),
		ValueSize: binary.LittleEndian.Uint32(header[9:13]),
		Timestamp: binary.LittleEndian.Uint64(header[13:21]),
	}
	if r.Kind != KindPut && r.Kind != KindDelete {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, header[4])
	}
	return r, nil
}

// Decode deserializes a binary record into a Record struct
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	r, err := c.DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	end := uint64(HeaderSize) + uint64(r.KeySize) + uint64(r.ValueSize)
	if uint64(len(data)) < end {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortRecord, len(data), end)
	}

	keyEnd := HeaderSize + int(r.KeySize)
	r.Key = data[HeaderSize:keyEnd]
	r.Value = data[keyEnd:int(end)]

	return r, nil
}

// Validate checks the integrity of a record using CRC32
func (r *Record) Validate() error {
	if sum := r.calculateCRC32(); r.CRC32 != sum {
		return fmt.Errorf("CRC32 mismatch: %d != %d", r.CRC32, sum)
	}
	return nil
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	return HeaderSize + len(r.Key) + len(r.Value)
}

// IsTombstone reports whether the record deletes its key
func (r *Record) IsTombstone() bool {
	return r.Kind == KindDelete
}

// NewRecord creates a new record with current timestamp
func NewRecord(kind RecordKind, key, value []byte) (*Record, error) {
	if kind != KindPut && kind != KindDelete {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}
	if uint64(len(key)) > math.MaxUint32 || uint64(len(value)) > math.MaxUint32 {
		return nil, ErrRecordTooLong
	}
	return &Record{
		Kind:      kind,
		KeySize:   uint32(len(key)),
		ValueSize: uint32(len(value)),
		Timestamp: uint64(time.Now().UnixNano()),
		Key:       key,
		Value:     value,
	}, nil
}

// calculateCRC32 covers every field except the CRC itself
func (r *Record) calculateCRC32() uint32 {
	var hdr [HeaderSize - 4]byte
	hdr[0] = byte(r.Kind)
	binary.LittleEndian.PutUint32(hdr[1:], r.KeySize)
	binary.LittleEndian.PutUint32(hdr[5:], r.ValueSize)
	binary.LittleEndian.PutUint64(hdr[9:], r.Timestamp)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(hdr[:])
	_, _ = crc.Write(r.Key)
	_, _ = crc.Write(r.Value)
	return crc.Sum32()
}
