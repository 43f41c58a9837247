package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/referral-client/internal/domain"
	bolt "go.etcd.io/bbolt"
)

func openTestBolt(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "referrals.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStorePutGetList(t *testing.T) {
	store := openTestBolt(t, Options{})
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if _, ok, err := store.Get("REF1"); err != nil || ok {
		t.Fatalf("expected missing record, ok=%v err=%v", ok, err)
	}

	for i, code := range []string{"REF2", "REF1"} {
		rec := domain.ReferralRecord{
			Code:       code,
			CampaignID: "campaign_123",
			ReferrerID: "user_456",
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
		}
		if err := store.Put(rec); err != nil {
			t.Fatalf("Put %s: %v", code, err)
		}
	}

	rec, ok, err := store.Get("REF1")
	if err != nil || !ok {
		t.Fatalf("Get REF1: ok=%v err=%v", ok, err)
	}
	if rec.CampaignID != "campaign_123" || rec.ReferrerID != "user_456" {
		t.Fatalf("unexpected record %+v", rec)
	}

	rec.Clicks++
	if err := store.Put(rec); err != nil {
		t.Fatalf("Put update: %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Code != "REF1" || list[1].Code != "REF2" {
		t.Fatalf("unexpected list order %#v", list)
	}
	if list[0].Clicks != 1 {
		t.Fatalf("update not persisted: %+v", list[0])
	}
}

func TestBoltStoreRejectsEmptyCode(t *testing.T) {
	store := openTestBolt(t, Options{})
	if err := store.Put(domain.ReferralRecord{Code: "  "}); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
}

func TestBoltStoreExpiresRecords(t *testing.T) {
	store := openTestBolt(t, Options{RecordTTL: time.Hour, CleanupInterval: time.Hour})
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Put(domain.ReferralRecord{Code: "old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if list, err := store.List(); err != nil || len(list) != 0 {
		t.Fatalf("expected expired record hidden from List, got %v err=%v", list, err)
	}
	if _, ok, err := store.Get("old"); err != nil || ok {
		t.Fatalf("expected expired record, ok=%v err=%v", ok, err)
	}

	// cleanup ran on the Get above; the key must be gone from the bucket.
	err := store.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(referralBucket)).Get([]byte("old")); v != nil {
			t.Fatalf("expired record still stored")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Put(domain.ReferralRecord{Code: "x"}); err != nil {
		t.Fatalf("noop store Put: %v", err)
	}
	if _, ok, _ := store.Get("x"); ok {
		t.Fatalf("noop store should never find records")
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
