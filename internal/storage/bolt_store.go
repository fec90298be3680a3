package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/vision-probe/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	runBucket        = "runs"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Values are an 8-byte
// big-endian expiry followed by the JSON run event; keys sort by tool then
// start time.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	runTTL          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		runTTL:          opts.RunTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores evt until its TTL elapses.
func (b *boltStore) Record(evt domain.RunEvent) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}
	value := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
	binary.BigEndian.PutUint64(value, uint64(now.Add(b.runTTL).Unix()))
	value = append(value, payload...)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(runBucket))
		if bucket == nil {
			return fmt.Errorf("run bucket missing")
		}
		return bucket.Put(runKey(evt), value)
	})
}

// Recent returns up to limit unexpired runs of tool, newest first.
func (b *boltStore) Recent(tool string, limit int) ([]domain.RunEvent, error) {
	if b == nil || b.db == nil || limit <= 0 {
		return nil, nil
	}

	now := b.now()
	prefix := toolPrefix(tool)
	var out []domain.RunEvent
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(runBucket))
		if bucket == nil {
			return fmt.Errorf("run bucket missing")
		}

		cursor := bucket.Cursor()
		k, v := cursor.Seek(upperBound(prefix))
		if k == nil {
			k, v = cursor.Last()
		} else {
			k, v = cursor.Prev()
		}
		for ; k != nil && bytes.HasPrefix(k, prefix) && len(out) < limit; k, v = cursor.Prev() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				continue
			}
			var evt domain.RunEvent
			if err := json.Unmarshal(v[expiryValueBytes:], &evt); err != nil {
				return fmt.Errorf("decode run %q: %w", k, err)
			}
			out = append(out, evt)
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired runs on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(runBucket))
		if bucket == nil {
			return fmt.Errorf("run bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func toolPrefix(tool string) []byte {
	return append([]byte(tool), 0x00)
}

// upperBound is the smallest key greater than every key starting with prefix.
func upperBound(prefix []byte) []byte {
	out := append([]byte(nil), prefix...)
	out[len(out)-1]++
	return out
}

func runKey(evt domain.RunEvent) []byte {
	key := toolPrefix(evt.Tool)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(evt.StartedAt.UnixNano()))
	key = append(key, ts[:]...)
	return append(key, evt.RunID...)
}

// decodeExpiry decodes the expiry time from the stored value prefix.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
