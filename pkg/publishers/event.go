package publishers

import (
	"time"

	"github.com/google/uuid"
)

// Event types forwarded for referral and reward activity.
const (
	EventReferralCreated   = "referral.created"
	EventReferralClicked   = "referral.clicked"
	EventReferralConverted = "referral.converted"
	EventRewardClaimed     = "reward.claimed"
	EventRewardRedeemed    = "reward.redeemed"
)

// Event represents the payload published downstream.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ReferralCode string    `json:"referral_code"`
	CampaignID   string    `json:"campaign_id,omitempty"`
	Payload      any       `json:"payload,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event with a fresh id for the given referral activity.
func NewEvent(typ, referralCode, campaignID string, payload any) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         typ,
		ReferralCode: referralCode,
		CampaignID:   campaignID,
		Payload:      payload,
		OccurredAt:   time.Now().UTC(),
	}
}

// attributes returns the routing attributes copied onto broker messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"event_type":    e.Type,
		"referral_code": e.ReferralCode,
	}
	if e.CampaignID != "" {
		attrs["campaign_id"] = e.CampaignID
	}
	return attrs
}
