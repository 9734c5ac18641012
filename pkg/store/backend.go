package store

import (
	"time"

	"github.com/ssargent/gridstore/pkg/logger"
)

// Backend is the flat key/value engine underneath a Container. Keys are
// absolute slash-separated paths; ListKeys must return them in byte order.
type Backend interface {
	Get(key []byte) ([]byte, error) // ErrKeyNotFound when absent
	Put(key, value []byte) error
	Delete(key []byte) error
	ListKeys(prefix []byte) ([]string, error)
	Sync() error
	Close() error
}

// BackendConfig is what a BackendFactory needs to open an engine
type BackendConfig struct {
	Path          string
	ReadOnly      bool
	FsyncInterval time.Duration
}

// BackendFactory opens a Backend at a path
type BackendFactory func(cfg BackendConfig) (Backend, error)

// OpenLogBackend opens the append-only log engine on a single file
func OpenLogBackend(cfg BackendConfig) (Backend, error) {
	kv, err := NewKVStore(KVStoreConfig{
		FilePath:      cfg.Path,
		FsyncInterval: cfg.FsyncInterval,
		ReadOnly:      cfg.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	recovery, err := kv.Open()
	if err != nil {
		return nil, err
	}
	if recovery.RecordsTruncated > 0 {
		logger.Warn("recovered from corruption", "path", cfg.Path,
			"records_truncated", recovery.RecordsTruncated, "bytes_truncated", recovery.FileSizeBefore-recovery.FileSizeAfter)
	}
	stats := kv.Stats()
	logger.Debug("log opened", "path", cfg.Path, "keys", stats.Keys,
		"bytes", stats.DataSize, "live_bytes", stats.LiveSize)
	return kv, nil
}
