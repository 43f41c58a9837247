package domain

import "time"

// ReferralRecord is the local journal entry for a referral issued through the CLI.
type ReferralRecord struct {
	Code        string    `json:"code"`
	ReferralID  string    `json:"referral_id,omitempty"`
	CampaignID  string    `json:"campaign_id"`
	ReferrerID  string    `json:"referrer_id"`
	RefereeID   string    `json:"referee_id,omitempty"`
	Clicks      int       `json:"clicks"`
	Conversions int       `json:"conversions"`
	CreatedAt   time.Time `json:"created_at"`
	LastEventAt time.Time `json:"last_event_at"`
}
