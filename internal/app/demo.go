package app

import (
	"context"
	"fmt"
	"io"

	"github.com/samvad-hq/referral-client/pkg/referral"
)

// Demo values used by RunDemo.
const (
	DemoCampaignID = "campaign_123"
	DemoReferrerID = "user_456"
	DemoAmount     = 99.99
)

// RunDemo walks through one referral: create, click, convert, then stats.
// The first failure stops the sequence and is returned.
func (t *Tracker) RunDemo(ctx context.Context, w io.Writer) error {
	ref, err := t.CreateReferral(ctx, referral.CreateReferralInput{
		CampaignID: DemoCampaignID,
		ReferrerID: DemoReferrerID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Referral created: %s\n", ref.Raw)

	click, err := t.TrackClick(ctx, ref.ReferralCode, referral.Metadata{
		"userAgent": "Mozilla/5.0...",
		"ipAddress": "192.168.1.1",
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Click tracked: %s\n", click.Raw)

	conversion, err := t.RecordConversion(ctx, ref.ReferralCode, referral.Amount(DemoAmount), referral.Metadata{
		"orderId":   "order_789",
		"productId": "prod_abc",
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Conversion recorded: %s\n", conversion.Raw)

	stats, err := t.Stats(ctx, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Stats:")
	return RenderStats(w, stats)
}
