package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samvad-hq/referral-client/internal/domain"
	"github.com/samvad-hq/referral-client/pkg/referral"
)

// RenderStats writes the typed stats fields as a two-column table.
func RenderStats(w io.Writer, stats *referral.Stats) error {
	if stats == nil {
		return fmt.Errorf("stats must not be nil")
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	rows := [][]string{
		{"Total referrals", strconv.FormatInt(stats.TotalReferrals, 10)},
		{"Total clicks", strconv.FormatInt(stats.TotalClicks, 10)},
		{"Total conversions", strconv.FormatInt(stats.TotalConversions, 10)},
		{"Conversion rate", strconv.FormatFloat(stats.ConversionRate, 'f', 2, 64)},
		{"Total reward value", strconv.FormatFloat(stats.TotalRewardValue, 'f', 2, 64)},
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("append stats rows: %w", err)
	}
	return table.Render()
}

// RenderJournal writes one row per journal record.
func RenderJournal(w io.Writer, records []domain.ReferralRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "journal is empty")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Code", "Campaign", "Referrer", "Clicks", "Conversions", "Last event"})
	for _, rec := range records {
		if err := table.Append([]string{
			rec.Code,
			rec.CampaignID,
			rec.ReferrerID,
			strconv.Itoa(rec.Clicks),
			strconv.Itoa(rec.Conversions),
			rec.LastEventAt.Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("append journal row: %w", err)
		}
	}
	return table.Render()
}

// RenderRewards writes one row per reward followed by the page position.
func RenderRewards(w io.Writer, page *referral.UserRewards) error {
	if page == nil {
		return fmt.Errorf("rewards must not be nil")
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Reward", "Status", "Amount", "Currency", "Referral", "Campaign"})
	for _, r := range page.Rewards {
		if err := table.Append([]string{
			r.ID,
			r.Status,
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			r.Currency,
			r.ReferralCode,
			r.CampaignID,
		}); err != nil {
			return fmt.Errorf("append reward row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d (%d rewards)\n", page.Page, page.TotalPages, page.TotalItems)
	return err
}
