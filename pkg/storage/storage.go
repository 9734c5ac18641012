package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ssargent/gridstore/pkg/store"
)

// PebbleBackend keeps a container in a pebble LSM directory instead of a
// single log file
type PebbleBackend struct {
	db       *pebble.DB
	writeOpt *pebble.WriteOptions
	readOnly bool
}

var _ store.Backend = (*PebbleBackend)(nil)

// OpenPebble opens or creates the pebble directory at cfg.Path. With no fsync
// interval every write is synced; otherwise writes are synced on Sync.
func OpenPebble(cfg store.BackendConfig) (store.Backend, error) {
	db, err := pebble.Open(cfg.Path, &pebble.Options{
		ReadOnly:         cfg.ReadOnly,
		ErrorIfNotExists: cfg.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", cfg.Path, err)
	}

	writeOpt := pebble.NoSync
	if cfg.FsyncInterval == 0 {
		writeOpt = pebble.Sync
	}
	return &PebbleBackend{db: db, writeOpt: writeOpt, readOnly: cfg.ReadOnly}, nil
}

func (s *PebbleBackend) Get(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, store.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// data is only valid until the closer runs
	value := make([]byte, len(data))
	copy(value, data)
	return value, nil
}

func (s *PebbleBackend) Put(key, value []byte) error {
	if s.readOnly {
		return store.ErrReadOnly
	}
	if len(key) == 0 {
		return store.ErrInvalidKey
	}
	return s.db.Set(key, value, s.writeOpt)
}

func (s *PebbleBackend) Delete(key []byte) error {
	if s.readOnly {
		return store.ErrReadOnly
	}
	return s.db.Delete(key, s.writeOpt)
}

// ListKeys returns keys starting with prefix in byte order
func (s *PebbleBackend) ListKeys(prefix []byte) ([]string, error) {
	opts := &pebble.IterOptions{}
	if len(prefix) > 0 {
		opts.LowerBound = prefix
		opts.UpperBound = prefixUpperBound(prefix)
	}

	iter, err := s.db.NewIter(opts)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0)
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		_ = iter.Close()
		return nil, err
	}
	return keys, iter.Close()
}

// Sync makes pending NoSync writes durable by syncing the WAL
func (s *PebbleBackend) Sync() error {
	if s.readOnly {
		return nil
	}
	return s.db.LogData(nil, pebble.Sync)
}

func (s *PebbleBackend) Close() error {
	return s.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil when the prefix is all 0xff
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil
}
