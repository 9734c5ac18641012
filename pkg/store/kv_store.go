package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ssargent/gridstore/pkg/codec"
)

// KVStore is a bitcask-style store: one append-only log file plus an
// in-memory index of live keys. It is the default Backend of a Container.
type KVStore struct {
	config KVStoreConfig
	writer *LogWriter
	reader *LogReader
	index  *HashIndex
	mutex  sync.Mutex
	isOpen bool
}

var _ Backend = (*KVStore)(nil)

// NewKVStore creates a new key-value store instance
func NewKVStore(config KVStoreConfig) (*KVStore, error) {
	if config.FilePath == "" {
		return nil, &KVError{"store file path is required"}
	}
	if !config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
			return nil, err
		}
	}

	return &KVStore{
		config: config,
		index:  NewHashIndex(HashIndexConfig{}),
	}, nil
}

// Open validates the log, truncates a torn tail and rebuilds the index.
// A read-only store indexes up to the first bad record and leaves the file
// untouched.
func (kv *KVStore) Open() (*RecoveryResult, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if kv.isOpen {
		return &RecoveryResult{}, nil
	}

	if kv.config.ReadOnly {
		if _, err := os.Stat(kv.config.FilePath); err != nil {
			return nil, err
		}
	}

	recovery, err := kv.validateLogFile(!kv.config.ReadOnly)
	if err != nil {
		return nil, err
	}

	if !kv.config.ReadOnly {
		writer, err := NewLogWriter(LogWriterConfig{
			FilePath:      kv.config.FilePath,
			FsyncInterval: kv.config.FsyncInterval,
			BufferSize:    64 * 1024,
		})
		if err != nil {
			return nil, err
		}
		kv.writer = writer
	}

	reader, err := NewLogReader(LogReaderConfig{FilePath: kv.config.FilePath})
	if err != nil {
		kv.closeWriter()
		return nil, err
	}
	kv.reader = reader

	if err := kv.index.BuildFromLog(kv.reader); err != nil {
		tolerated := kv.config.ReadOnly && errors.Is(err, ErrCorruption)
		if !tolerated {
			_ = kv.reader.Close()
			kv.closeWriter()
			return nil, err
		}
	}

	kv.isOpen = true
	return recovery, nil
}

func (kv *KVStore) closeWriter() {
	if kv.writer != nil {
		_ = kv.writer.Close()
		kv.writer = nil
	}
}

// Get retrieves a value for a key
func (kv *KVStore) Get(key []byte) ([]byte, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return nil, ErrStoreClosed
	}

	entry, exists := kv.index.Get(key)
	if !exists {
		return nil, ErrKeyNotFound
	}

	// buffered records must reach the file before the reader can see them
	if kv.writer != nil {
		if err := kv.writer.Flush(); err != nil {
			return nil, err
		}
	}

	record, err := kv.reader.ReadAt(entry.Offset)
	if err != nil {
		return nil, err
	}
	if record.IsTombstone() {
		return nil, ErrKeyNotFound
	}

	return record.Value, nil
}

// Put stores a key-value pair
func (kv *KVStore) Put(key, value []byte) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()
	return kv.append(codec.KindPut, key, value)
}

// Delete writes a tombstone for key. Deleting a missing key is not an error.
func (kv *KVStore) Delete(key []byte) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if kv.isOpen {
		if _, exists := kv.index.Get(key); !exists {
			return nil
		}
	}
	return kv.append(codec.KindDelete, key, nil)
}

func (kv *KVStore) append(kind codec.RecordKind, key, value []byte) error {
	if !kv.isOpen {
		return ErrStoreClosed
	}
	if kv.config.ReadOnly {
		return ErrReadOnly
	}
	if len(key) == 0 {
		return ErrInvalidKey
	}

	offset, size, err := kv.writer.Append(kind, key, value)
	if err != nil {
		return err
	}

	if kind == codec.KindDelete {
		kv.index.Delete(key)
		return nil
	}
	kv.index.Put(key, &IndexEntry{
		Offset:    offset,
		Size:      uint32(size),
		Timestamp: uint64(time.Now().UnixNano()),
	})
	return nil
}

// ListKeys returns the live keys with the given prefix in byte order
func (kv *KVStore) ListKeys(prefix []byte) ([]string, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return nil, ErrStoreClosed
	}
	return kv.index.KeysWithPrefix(string(prefix)), nil
}

// Sync flushes and fsyncs pending writes
func (kv *KVStore) Sync() error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return ErrStoreClosed
	}
	if kv.writer == nil {
		return nil
	}
	return kv.writer.Sync()
}

// Close shuts down the store
func (kv *KVStore) Close() error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return nil
	}
	kv.isOpen = false

	var firstErr error
	if kv.writer != nil {
		firstErr = kv.writer.Close()
		kv.writer = nil
	}
	if err := kv.reader.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Stats returns store statistics
func (kv *KVStore) Stats() *StoreStats {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return &StoreStats{}
	}

	stats := &StoreStats{Keys: kv.index.Size(), LiveSize: kv.index.LiveBytes()}
	if kv.writer != nil {
		stats.DataSize = kv.writer.Size()
	} else if info, err := os.Stat(kv.config.FilePath); err == nil {
		stats.DataSize = info.Size()
	}
	return stats
}

// validateLogFile walks the log until the first invalid record. With
// truncate set the file is cut back to the last good record.
func (kv *KVStore) validateLogFile(truncate bool) (*RecoveryResult, error) {
	startTime := time.Now()
	filePath := kv.config.FilePath

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RecoveryResult{IndexRebuilt: true, RecoveryTime: time.Since(startTime)}, nil
		}
		return nil, err
	}
	fileSizeBefore := fileInfo.Size()

	reader, err := NewLogReader(LogReaderConfig{FilePath: filePath})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var recordsValidated int64
	var lastValidOffset int64
	var corruptionFound bool

	for {
		_, err := reader.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !errors.Is(err, ErrCorruption) {
				return nil, err
			}
			corruptionFound = true
			break
		}
		recordsValidated++
		lastValidOffset = reader.Offset()
	}

	result := &RecoveryResult{
		RecordsValidated: recordsValidated,
		FileSizeBefore:   fileSizeBefore,
		FileSizeAfter:    fileSizeBefore,
		IndexRebuilt:     true,
	}

	if corruptionFound && truncate {
		if err := os.Truncate(filePath, lastValidOffset); err != nil {
			return nil, fmt.Errorf("truncate corrupted tail: %w", err)
		}
		result.FileSizeAfter = lastValidOffset
		// everything after the last good record is discarded as one torn write
		result.RecordsTruncated = 1
	}

	result.RecoveryTime = time.Since(startTime)
	return result, nil
}
