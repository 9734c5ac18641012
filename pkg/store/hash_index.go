package store

import (
	"sort"
	"strings"
	"sync"
)

// HashIndex maps every live key to the location of its latest record and
// keeps a running total of the bytes those records occupy.
type HashIndex struct {
	entries   map[string]*IndexEntry
	liveBytes int64
	mutex     sync.RWMutex
}

// NewHashIndex creates an empty index
func NewHashIndex(config HashIndexConfig) *HashIndex {
	return &HashIndex{
		entries: make(map[string]*IndexEntry),
	}
}

// Put points key at entry, replacing any earlier location
func (idx *HashIndex) Put(key []byte, entry *IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.set(string(key), entry)
}

func (idx *HashIndex) set(key string, entry *IndexEntry) {
	if old, ok := idx.entries[key]; ok {
		idx.liveBytes -= int64(old.Size)
	}
	idx.entries[key] = entry
	idx.liveBytes += int64(entry.Size)
}

func (idx *HashIndex) remove(key string) {
	if old, ok := idx.entries[key]; ok {
		idx.liveBytes -= int64(old.Size)
		delete(idx.entries, key)
	}
}

// Get looks up the latest record location of key
func (idx *HashIndex) Get(key []byte) (*IndexEntry, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	entry, exists := idx.entries[string(key)]
	return entry, exists
}

// Delete forgets key
func (idx *HashIndex) Delete(key []byte) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.remove(string(key))
}

// Size returns the number of live keys
func (idx *HashIndex) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return len(idx.entries)
}

// LiveBytes is the encoded size of the records the index points at. The
// rest of the log is superseded puts and delete markers.
func (idx *HashIndex) LiveBytes() int64 {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return idx.liveBytes
}

// Clear empties the index
func (idx *HashIndex) Clear() {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.entries = make(map[string]*IndexEntry)
	idx.liveBytes = 0
}

// KeysWithPrefix returns the keys that start with prefix in byte order.
// Container listings depend on this order being stable.
func (idx *HashIndex) KeysWithPrefix(prefix string) []string {
	idx.mutex.RLock()
	keys := make([]string, 0)
	for key := range idx.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	idx.mutex.RUnlock()

	sort.Strings(keys)
	return keys
}

// BuildFromLog replays a log from offset zero. Later records win and
// delete markers drop their key.
func (idx *HashIndex) BuildFromLog(reader *LogReader) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = make(map[string]*IndexEntry)
	idx.liveBytes = 0

	if err := reader.Seek(0); err != nil {
		return err
	}

	it := reader.Iterator()
	defer it.Close()

	for it.Next() {
		rec := it.Record()
		if rec.IsTombstone() {
			idx.remove(string(rec.Key))
			continue
		}
		size := rec.Size()
		idx.set(string(rec.Key), &IndexEntry{
			Offset:    reader.Offset() - int64(size),
			Size:      uint32(size),
			Timestamp: rec.Timestamp,
		})
	}

	return it.Err()
}
