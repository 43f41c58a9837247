package main

import (
	"fmt"

	"github.com/samvad-hq/referral-client/internal/app"
	"github.com/samvad-hq/referral-client/internal/config"
	"github.com/samvad-hq/referral-client/internal/logger"
	"github.com/samvad-hq/referral-client/pkg/referral"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg *config.Config, log logger.Logger) *cobra.Command {
	var apiKey, baseURL string

	rootCmd := &cobra.Command{
		Use:           "referralctl",
		Short:         "CLI client for the referral tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("api-key") {
				cfg.APIKey = apiKey
			}
			if cmd.Flags().Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key sent as X-API-Key (overrides REFERRAL_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (overrides REFERRAL_BASE_URL)")

	// withTracker opens the runtime for one command and closes it afterwards.
	withTracker := func(cmd *cobra.Command, fn func(*app.Tracker) error) error {
		tr, err := app.NewTracker(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := tr.Close(); err != nil {
				log.WarnObj("tracker close failed", "error", err.Error())
			}
		}()
		return fn(tr)
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "demo",
		Short: "Create a referral, click it, convert it and print stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				if err := tr.RunDemo(cmd.Context(), cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("API error: %w", err)
				}
				return nil
			})
		},
	})

	var campaignID, referrerID, refereeID string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a referral code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				ref, err := tr.CreateReferral(cmd.Context(), referral.CreateReferralInput{
					CampaignID: campaignID,
					ReferrerID: referrerID,
					RefereeID:  refereeID,
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(ref.Raw))
				return err
			})
		},
	}
	createCmd.Flags().StringVarP(&campaignID, "campaign-id", "c", "", "Campaign ID (required)")
	createCmd.Flags().StringVarP(&referrerID, "referrer-id", "r", "", "Referrer user ID (required)")
	createCmd.Flags().StringVarP(&refereeID, "referee-id", "e", "", "Referee user ID")
	_ = createCmd.MarkFlagRequired("campaign-id")
	_ = createCmd.MarkFlagRequired("referrer-id")
	rootCmd.AddCommand(createCmd)

	var clickMeta map[string]string
	clickCmd := &cobra.Command{
		Use:   "click CODE",
		Short: "Track a click on a referral code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				res, err := tr.TrackClick(cmd.Context(), args[0], toMetadata(clickMeta))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(res.Raw))
				return err
			})
		},
	}
	clickCmd.Flags().StringToStringVarP(&clickMeta, "meta", "m", nil, "Metadata key=value pairs")
	rootCmd.AddCommand(clickCmd)

	var amount float64
	var convertMeta map[string]string
	convertCmd := &cobra.Command{
		Use:   "convert CODE",
		Short: "Record a conversion on a referral code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var amt *float64
			if cmd.Flags().Changed("amount") {
				amt = referral.Amount(amount)
			}
			return withTracker(cmd, func(tr *app.Tracker) error {
				res, err := tr.RecordConversion(cmd.Context(), args[0], amt, toMetadata(convertMeta))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(res.Raw))
				return err
			})
		},
	}
	convertCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Conversion amount (sent as null when omitted)")
	convertCmd.Flags().StringToStringVarP(&convertMeta, "meta", "m", nil, "Metadata key=value pairs")
	rootCmd.AddCommand(convertCmd)

	var statsCampaign string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show referral statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				stats, err := tr.Stats(cmd.Context(), statsCampaign)
				if err != nil {
					return err
				}
				return app.RenderStats(cmd.OutOrStdout(), stats)
			})
		},
	}
	statsCmd.Flags().StringVarP(&statsCampaign, "campaign-id", "c", "", "Restrict stats to one campaign")
	rootCmd.AddCommand(statsCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "journal",
		Short: "List referrals recorded locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				records, err := tr.Journal()
				if err != nil {
					return fmt.Errorf("read journal: %w", err)
				}
				return app.RenderJournal(cmd.OutOrStdout(), records)
			})
		},
	})

	rootCmd.AddCommand(newRewardsCmd(withTracker))

	return rootCmd
}

func newRewardsCmd(withTracker func(*cobra.Command, func(*app.Tracker) error) error) *cobra.Command {
	rewardsCmd := &cobra.Command{Use: "rewards", Short: "Reward operations"}

	printRaw := func(cmd *cobra.Command, raw []byte) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return err
	}

	rewardsCmd.AddCommand(&cobra.Command{
		Use:   "validate CODE",
		Short: "Check a reward code without consuming it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				res, err := tr.ValidateRewardCode(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printRaw(cmd, res.Raw)
			})
		},
	})

	var orderRef string
	redeemCmd := &cobra.Command{
		Use:   "redeem CODE",
		Short: "Redeem a reward code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				res, err := tr.RedeemReward(cmd.Context(), referral.RedeemRewardInput{Code: args[0], OrderReference: orderRef})
				if err != nil {
					return err
				}
				return printRaw(cmd, res.Raw)
			})
		},
	}
	redeemCmd.Flags().StringVarP(&orderRef, "order-ref", "o", "", "Order reference stored with the redemption")
	rewardsCmd.AddCommand(redeemCmd)

	var claim referral.ClaimRewardInput
	claimCmd := &cobra.Command{
		Use:   "claim REWARD_ID",
		Short: "Claim a pending reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				res, err := tr.ClaimReward(cmd.Context(), args[0], claim)
				if err != nil {
					return err
				}
				return printRaw(cmd, res.Raw)
			})
		},
	}
	claimCmd.Flags().StringVar(&claim.CouponCode, "coupon-code", "", "Partner coupon code (COUPON_CODE rewards)")
	claimCmd.Flags().StringVar(&claim.Reference, "reference", "", "Fulfillment reference")
	claimCmd.Flags().StringVar(&claim.PayoutReference, "payout-ref", "", "Payout reference")
	rewardsCmd.AddCommand(claimCmd)

	var q referral.ListRewardsQuery
	listCmd := &cobra.Command{
		Use:   "list USER_ID",
		Short: "List a user's rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(tr *app.Tracker) error {
				res, err := tr.UserRewards(cmd.Context(), args[0], q)
				if err != nil {
					return err
				}
				return app.RenderRewards(cmd.OutOrStdout(), res)
			})
		},
	}
	listCmd.Flags().StringVar(&q.Status, "status", "", "PENDING, APPROVED, PAID or CANCELLED")
	listCmd.Flags().StringVarP(&q.CampaignID, "campaign-id", "c", "", "Restrict to one campaign")
	listCmd.Flags().IntVar(&q.Page, "page", 0, "Page number")
	listCmd.Flags().IntVar(&q.Limit, "limit", 0, "Page size")
	rewardsCmd.AddCommand(listCmd)

	return rewardsCmd
}

func toMetadata(kv map[string]string) referral.Metadata {
	if len(kv) == 0 {
		return nil
	}
	md := make(referral.Metadata, len(kv))
	for k, v := range kv {
		md[k] = v
	}
	return md
}
