// Package storage keeps the local referral journal.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/referral-client/internal/domain"
)

// ErrEmptyCode is returned when a record without a referral code is stored.
var ErrEmptyCode = errors.New("referral code is empty")

// Store persists referral records keyed by referral code.
type Store interface {
	Close() error
	Put(rec domain.ReferralRecord) error
	Get(code string) (domain.ReferralRecord, bool, error)
	List() ([]domain.ReferralRecord, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) Put(domain.ReferralRecord) error { return nil }
func (noopStore) Get(string) (domain.ReferralRecord, bool, error) {
	return domain.ReferralRecord{}, false, nil
}
func (noopStore) List() ([]domain.ReferralRecord, error) { return nil, nil }
