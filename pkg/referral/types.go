package referral

import "encoding/json"

// Metadata is caller-supplied key-value data attached to a click or conversion.
// Values must be JSON-serializable.
type Metadata map[string]any

// CreateReferralInput carries the arguments of CreateReferral.
// RefereeID is optional and sent as null when empty.
type CreateReferralInput struct {
	CampaignID string
	ReferrerID string
	RefereeID  string
}

// Response documents are read best-effort. Typed fields hold what could be
// read; a missing or differently typed value leaves the zero value. Raw is the
// authoritative copy of the response.

// Referral is the server response to CreateReferral.
type Referral struct {
	ReferralCode string `json:"referralCode"`
	ReferralID   string `json:"referralId,omitempty"`

	// Raw is the undecoded response document.
	Raw json.RawMessage `json:"-"`
}

// ClickResult confirms a tracked click.
type ClickResult struct {
	Success    bool   `json:"success"`
	ReferralID string `json:"referralId,omitempty"`
	Status     string `json:"status,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ConversionResult confirms a recorded conversion.
type ConversionResult struct {
	Success      bool     `json:"success"`
	ReferralID   string   `json:"referralId,omitempty"`
	ConversionID string   `json:"conversionId,omitempty"`
	RewardAmount *float64 `json:"rewardAmount,omitempty"`
	Status       string   `json:"status,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Stats is the aggregate returned by GetStats. No structure is imposed on the
// document: the typed fields are filled when present with a usable type, and
// Raw always carries the full payload, whatever its shape.
type Stats struct {
	TotalReferrals   int64   `json:"totalReferrals"`
	TotalClicks      int64   `json:"totalClicks"`
	TotalConversions int64   `json:"totalConversions"`
	ConversionRate   float64 `json:"conversionRate"`
	TotalRewardValue float64 `json:"totalRewardValue"`

	Raw json.RawMessage `json:"-"`
}

// Amount returns a pointer to v for RecordConversion.
func Amount(v float64) *float64 { return &v }

type createReferralBody struct {
	CampaignID string  `json:"campaignId"`
	ReferrerID string  `json:"referrerId"`
	RefereeID  *string `json:"refereeId"`
}

type clickBody struct {
	Metadata Metadata `json:"metadata"`
}

type conversionBody struct {
	Amount   *float64 `json:"amount"`
	Metadata Metadata `json:"metadata"`
}

func metadataOrEmpty(m Metadata) Metadata {
	if m == nil {
		return Metadata{}
	}
	return m
}

func referralFrom(raw json.RawMessage) *Referral {
	f := objectFields(raw)
	return &Referral{
		ReferralCode: f.str("referralCode"),
		ReferralID:   f.str("referralId"),
		Raw:          raw,
	}
}

func clickResultFrom(raw json.RawMessage) *ClickResult {
	f := objectFields(raw)
	return &ClickResult{
		Success:    f.boolean("success"),
		ReferralID: f.str("referralId"),
		Status:     f.str("status"),
		Raw:        raw,
	}
}

func conversionResultFrom(raw json.RawMessage) *ConversionResult {
	f := objectFields(raw)
	return &ConversionResult{
		Success:      f.boolean("success"),
		ReferralID:   f.str("referralId"),
		ConversionID: f.str("conversionId"),
		RewardAmount: f.floatPtr("rewardAmount"),
		Status:       f.str("status"),
		Raw:          raw,
	}
}

func statsFrom(raw json.RawMessage) *Stats {
	f := objectFields(raw)
	return &Stats{
		TotalReferrals:   f.int("totalReferrals"),
		TotalClicks:      f.int("totalClicks"),
		TotalConversions: f.int("totalConversions"),
		ConversionRate:   f.float("conversionRate"),
		TotalRewardValue: f.float("totalRewardValue"),
		Raw:              raw,
	}
}
