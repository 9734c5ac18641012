package store

import (
	"time"

	"github.com/ssargent/gridstore/pkg/codec"
)

// IndexEntry locates the latest record for a key in the log
type IndexEntry struct {
	Offset    int64  // Byte offset within the file
	Size      uint32 // Size of the record in bytes
	Timestamp uint64 // Record timestamp
}

// LogWriterConfig holds configuration for the log writer
type LogWriterConfig struct {
	FilePath      string        // Path to the container file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// LogReaderConfig holds configuration for the log reader
type LogReaderConfig struct {
	FilePath    string
	StartOffset int64
}

// HashIndexConfig holds configuration for the hash index
type HashIndexConfig struct{}

// KVStoreConfig holds configuration for the log-structured store
type KVStoreConfig struct {
	FilePath      string        // Single log file backing the store
	FsyncInterval time.Duration // Fsync interval for durability
	ReadOnly      bool          // Reject writes and never truncate
}

// RecoveryResult reports what Open found while validating the log
type RecoveryResult struct {
	RecordsValidated int64
	RecordsTruncated int64
	FileSizeBefore   int64
	FileSizeAfter    int64
	IndexRebuilt     bool
	RecoveryTime     time.Duration
}

// StoreStats holds statistics about the store
type StoreStats struct {
	Keys     int
	DataSize int64 // Bytes in the log file
	LiveSize int64 // Bytes of records still referenced by the index
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *codec.Record
	Err() error
	Close() error
}

// Errors
var (
	ErrKeyNotFound = &KVError{"key not found"}
	ErrInvalidKey  = &KVError{"invalid key"}
	ErrCorruption  = &KVError{"data corruption detected"}
	ErrStoreClosed = &KVError{"store is not open"}
	ErrReadOnly    = &KVError{"store is read-only"}
)

// KVError represents a key-value store error
type KVError struct {
	Message string
}

func (e *KVError) Error() string {
	return e.Message
}
