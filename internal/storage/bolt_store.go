package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/referral-client/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const referralBucket = "referrals"

// storedRecord is the on-disk envelope carrying the expiry next to the record.
type storedRecord struct {
	Record    domain.ReferralRecord `json:"record"`
	ExpiresAt int64                 `json:"expires_at"`
}

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	recordTTL       time.Duration
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
		_, err := tx.CreateBucketIfNotExists([]byte(referralBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		recordTTL:       opts.RecordTTL,
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

// Put stores rec and refreshes its expiry.
func (b *boltStore) Put(rec domain.ReferralRecord) error {
	if b == nil || b.db == nil {
		return nil
	}
	code := strings.TrimSpace(rec.Code)
	if code == "" {
		return ErrEmptyCode
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	value, err := json.Marshal(storedRecord{Record: rec, ExpiresAt: now.Add(b.recordTTL).Unix()})
	if err != nil {
		return fmt.Errorf("encode referral record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(referralBucket))
		if bucket == nil {
			return fmt.Errorf("referral bucket missing")
		}
		return bucket.Put([]byte(code), value)
	})
}

// Get returns the record for code. Expired records are deleted and reported missing.
func (b *boltStore) Get(code string) (domain.ReferralRecord, bool, error) {
	if b == nil || b.db == nil {
		return domain.ReferralRecord{}, false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return domain.ReferralRecord{}, false, err
	}

	var (
		rec   domain.ReferralRecord
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(referralBucket))
		if bucket == nil {
			return fmt.Errorf("referral bucket missing")
		}

		key := []byte(strings.TrimSpace(code))
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		stored, ok := decodeRecord(value)
		if !ok || !time.Unix(stored.ExpiresAt, 0).After(now) {
			return bucket.Delete(key)
		}

		rec, found = stored.Record, true
		return nil
	})
	return rec, found, err
}

// List returns live records ordered by creation time.
func (b *boltStore) List() ([]domain.ReferralRecord, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var out []domain.ReferralRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(referralBucket))
		if bucket == nil {
			return fmt.Errorf("referral bucket missing")
		}
		return bucket.ForEach(func(_, v []byte) error {
			stored, ok := decodeRecord(v)
			if ok && time.Unix(stored.ExpiresAt, 0).After(now) {
				out = append(out, stored.Record)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// maybeCleanupExpired removes expired records on a fixed cadence to avoid unbounded growth.
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
		bucket := tx.Bucket([]byte(referralBucket))
		if bucket == nil {
			return fmt.Errorf("referral bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			stored, ok := decodeRecord(v)
			if !ok || !time.Unix(stored.ExpiresAt, 0).After(now) {
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

// decodeRecord decodes a stored envelope; malformed values are treated as expired.
func decodeRecord(value []byte) (storedRecord, bool) {
	var stored storedRecord
	if err := json.Unmarshal(value, &stored); err != nil {
		return storedRecord{}, false
	}
	if stored.ExpiresAt <= 0 {
		return storedRecord{}, false
	}
	return stored, true
}
