package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/referral-client/internal/config"
	"github.com/samvad-hq/referral-client/internal/domain"
	"github.com/samvad-hq/referral-client/internal/logger"
	"github.com/samvad-hq/referral-client/internal/storage"
	"github.com/samvad-hq/referral-client/pkg/publishers"
	"github.com/samvad-hq/referral-client/pkg/referral"
)

// ReferralAPI is the subset of *referral.Client the tracker drives.
type ReferralAPI interface {
	CreateReferral(ctx context.Context, in referral.CreateReferralInput) (*referral.Referral, error)
	TrackClick(ctx context.Context, code string, metadata referral.Metadata) (*referral.ClickResult, error)
	RecordConversion(ctx context.Context, code string, amount *float64, metadata referral.Metadata) (*referral.ConversionResult, error)
	GetStats(ctx context.Context, campaignID string) (*referral.Stats, error)
	ValidateRewardCode(ctx context.Context, code string) (*referral.RewardValidation, error)
	RedeemReward(ctx context.Context, in referral.RedeemRewardInput) (*referral.RewardResult, error)
	ClaimReward(ctx context.Context, rewardID string, in referral.ClaimRewardInput) (*referral.RewardResult, error)
	ListUserRewards(ctx context.Context, userID string, q referral.ListRewardsQuery) (*referral.UserRewards, error)
}

// EventPublisher forwards referral activity downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Close() error
}

// Tracker wraps the referral API with a local journal and event forwarding.
// API errors are returned unchanged; journal and forwarding failures are only logged.
type Tracker struct {
	api    ReferralAPI
	store  storage.Store
	events EventPublisher
	log    logger.Logger
	now    func() time.Time
}

// NewTracker builds a tracker runtime from config.
func NewTracker(ctx context.Context, cfg *config.Config, log logger.Logger) (*Tracker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := referral.New(cfg.APIKey,
		referral.WithBaseURL(cfg.BaseURL),
		referral.WithTimeout(cfg.HTTPTimeout),
		referral.WithDebug(cfg.HTTPDebug),
		referral.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("init referral client: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.JournalType, cfg.JournalPath, storage.Options{
		RecordTTL:       cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"record_ttl_seconds":       int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	return newTracker(client, store, fanout, log), nil
}

func newTracker(api ReferralAPI, store storage.Store, events EventPublisher, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.NopLogger{}
	}
	if events == nil {
		events = publishers.NewFanout(nil)
	}
	return &Tracker{
		api:    api,
		store:  store,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// buildFanout loads the publishers file when one is configured. Without it
// events are dropped.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// CreateReferral issues a referral and records it in the journal.
func (t *Tracker) CreateReferral(ctx context.Context, in referral.CreateReferralInput) (*referral.Referral, error) {
	ref, err := t.api.CreateReferral(ctx, in)
	if err != nil {
		return nil, err
	}

	now := t.now().UTC()
	t.saveRecord(domain.ReferralRecord{
		Code:        ref.ReferralCode,
		ReferralID:  ref.ReferralID,
		CampaignID:  in.CampaignID,
		ReferrerID:  in.ReferrerID,
		RefereeID:   in.RefereeID,
		CreatedAt:   now,
		LastEventAt: now,
	})
	t.publish(ctx, publishers.NewEvent(publishers.EventReferralCreated, ref.ReferralCode, in.CampaignID, map[string]any{
		"referral_id": ref.ReferralID,
		"referrer_id": in.ReferrerID,
		"referee_id":  in.RefereeID,
	}))
	return ref, nil
}

// TrackClick records a click on code.
func (t *Tracker) TrackClick(ctx context.Context, code string, metadata referral.Metadata) (*referral.ClickResult, error) {
	res, err := t.api.TrackClick(ctx, code, metadata)
	if err != nil {
		return nil, err
	}

	rec := t.bump(code, func(r *domain.ReferralRecord) { r.Clicks++ })
	t.publish(ctx, publishers.NewEvent(publishers.EventReferralClicked, code, rec.CampaignID, map[string]any{
		"status":   res.Status,
		"metadata": metadata,
	}))
	return res, nil
}

// RecordConversion records a conversion on code.
func (t *Tracker) RecordConversion(ctx context.Context, code string, amount *float64, metadata referral.Metadata) (*referral.ConversionResult, error) {
	res, err := t.api.RecordConversion(ctx, code, amount, metadata)
	if err != nil {
		return nil, err
	}

	rec := t.bump(code, func(r *domain.ReferralRecord) { r.Conversions++ })
	t.publish(ctx, publishers.NewEvent(publishers.EventReferralConverted, code, rec.CampaignID, map[string]any{
		"amount":        amount,
		"conversion_id": res.ConversionID,
		"reward_amount": res.RewardAmount,
		"metadata":      metadata,
	}))
	return res, nil
}

// Stats fetches aggregate statistics, optionally for one campaign.
func (t *Tracker) Stats(ctx context.Context, campaignID string) (*referral.Stats, error) {
	return t.api.GetStats(ctx, campaignID)
}

// ValidateRewardCode checks a reward code without consuming it.
func (t *Tracker) ValidateRewardCode(ctx context.Context, code string) (*referral.RewardValidation, error) {
	return t.api.ValidateRewardCode(ctx, code)
}

// RedeemReward consumes a reward code and forwards a reward.redeemed event.
func (t *Tracker) RedeemReward(ctx context.Context, in referral.RedeemRewardInput) (*referral.RewardResult, error) {
	res, err := t.api.RedeemReward(ctx, in)
	if err != nil {
		return nil, err
	}
	t.publish(ctx, rewardEvent(publishers.EventRewardRedeemed, res.Reward))
	return res, nil
}

// ClaimReward claims a pending reward and forwards a reward.claimed event.
func (t *Tracker) ClaimReward(ctx context.Context, rewardID string, in referral.ClaimRewardInput) (*referral.RewardResult, error) {
	res, err := t.api.ClaimReward(ctx, rewardID, in)
	if err != nil {
		return nil, err
	}
	if res.Reward.ID == "" {
		res.Reward.ID = rewardID
	}
	t.publish(ctx, rewardEvent(publishers.EventRewardClaimed, res.Reward))
	return res, nil
}

// UserRewards lists one page of a user's rewards.
func (t *Tracker) UserRewards(ctx context.Context, userID string, q referral.ListRewardsQuery) (*referral.UserRewards, error) {
	return t.api.ListUserRewards(ctx, userID, q)
}

func rewardEvent(typ string, r referral.Reward) publishers.Event {
	return publishers.NewEvent(typ, r.ReferralCode, r.CampaignID, map[string]any{
		"reward_id":        r.ID,
		"user_id":          r.UserID,
		"amount":           r.Amount,
		"currency":         r.Currency,
		"fulfillment_type": r.FulfillmentType,
		"discount_code":    r.DiscountCode,
	})
}

// Journal lists the referrals recorded locally.
func (t *Tracker) Journal() ([]domain.ReferralRecord, error) {
	return t.store.List()
}

// Close releases the journal and any publisher connections.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.store != nil {
		if err := t.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	if t.events != nil {
		if err := t.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publishers: %w", err))
		}
	}
	return errors.Join(errs...)
}

// bump applies fn to the journal record for code. Codes issued elsewhere get
// a fresh record so their activity is still counted. When the record cannot be
// read the journal is left untouched.
func (t *Tracker) bump(code string, fn func(*domain.ReferralRecord)) domain.ReferralRecord {
	now := t.now().UTC()
	rec, ok, err := t.store.Get(code)
	if err != nil {
		t.log.WarnObj("journal read failed; skipping update", "journal_error", map[string]any{
			"code":  code,
			"error": err.Error(),
		})
		return domain.ReferralRecord{Code: code}
	}
	if !ok {
		rec = domain.ReferralRecord{Code: code, CreatedAt: now}
	}
	fn(&rec)
	rec.LastEventAt = now
	t.saveRecord(rec)
	return rec
}

func (t *Tracker) saveRecord(rec domain.ReferralRecord) {
	if err := t.store.Put(rec); err != nil {
		t.log.WarnObj("journal write failed", "journal_error", map[string]any{
			"code":  rec.Code,
			"error": err.Error(),
		})
	}
}

func (t *Tracker) publish(ctx context.Context, evt publishers.Event) {
	delivered, err := t.events.Publish(ctx, evt)
	if err != nil {
		t.log.ErrorObj("event forwarding failed", "publish_error", map[string]any{
			"event_id":   evt.ID,
			"event_type": evt.Type,
			"delivered":  delivered,
			"error":      err.Error(),
		})
		return
	}
	if delivered > 0 {
		t.log.DebugObj("event forwarded", "publish_meta", map[string]any{
			"event_id":   evt.ID,
			"event_type": evt.Type,
			"delivered":  delivered,
		})
	}
}
