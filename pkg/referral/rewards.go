package referral

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/samvad-hq/referral-client/pkg/httpclient"
)

const (
	opValidateReward  = "validate reward code"
	opRedeemReward    = "redeem reward"
	opClaimReward     = "claim reward"
	opListUserRewards = "list user rewards"

	pathRewardValidate = "/v1/rewards/validate"
	pathRewardRedeem   = "/v1/rewards/redeem"
	pathRewardClaim    = "/v1/rewards/{rewardId}/claim"
	pathUserRewards    = "/v1/users/{userId}/rewards"
)

// Reward is one reward as reported by the rewards endpoints.
type Reward struct {
	ID              string
	UserID          string
	Amount          float64
	Currency        string
	Status          string
	FulfillmentType string
	DiscountCode    string
	ReferralCode    string
	CampaignID      string
}

func rewardFrom(f fields) Reward {
	ref := f.object("Referral")
	return Reward{
		ID:              f.str("id"),
		UserID:          f.str("userId"),
		Amount:          f.float("amount"),
		Currency:        f.str("currency"),
		Status:          f.str("status"),
		FulfillmentType: f.str("fulfillmentType"),
		DiscountCode:    f.str("discountCode"),
		ReferralCode:    ref.str("referralCode"),
		CampaignID:      ref.str("campaignId"),
	}
}

// RewardValidation answers ValidateRewardCode. Valid is false for unknown,
// expired, redeemed or cancelled codes; the server still replies 2xx.
type RewardValidation struct {
	Valid           bool
	RewardID        string
	UserID          string
	Amount          float64
	Currency        string
	FulfillmentType string
	Status          string
	IsExpired       bool
	IsRedeemed      bool
	IsCancelled     bool

	Raw json.RawMessage
}

// RewardResult answers RedeemReward and ClaimReward.
type RewardResult struct {
	Success bool
	Reward  Reward

	Raw json.RawMessage
}

// RedeemRewardInput carries the arguments of RedeemReward.
type RedeemRewardInput struct {
	Code           string
	OrderReference string
}

// ClaimRewardInput carries the optional fulfillment details of ClaimReward.
// CouponCode is required by the server for COUPON_CODE rewards.
type ClaimRewardInput struct {
	CouponCode      string
	Reference       string
	PayoutReference string
}

// ListRewardsQuery filters ListUserRewards. Zero values are not sent; Page and
// Limit are passed through as given.
type ListRewardsQuery struct {
	Status     string
	CampaignID string
	Page       int
	Limit      int
}

// UserRewards is one page of a user's rewards.
type UserRewards struct {
	Rewards    []Reward
	Page       int
	Limit      int
	TotalItems int64
	TotalPages int

	Raw json.RawMessage
}

type redeemBody struct {
	Code           string `json:"code"`
	OrderReference string `json:"orderReference,omitempty"`
}

type claimBody struct {
	CouponCode      string `json:"couponCode,omitempty"`
	Reference       string `json:"reference,omitempty"`
	PayoutReference string `json:"payoutReference,omitempty"`
}

// ValidateRewardCode checks a discount or coupon code without consuming it.
func (c *Client) ValidateRewardCode(ctx context.Context, code string) (*RewardValidation, error) {
	if err := c.require(opValidateReward, "code", code); err != nil {
		return nil, err
	}

	raw, err := c.send(ctx, opValidateReward, httpclient.Request{
		Method: http.MethodGet,
		Path:   pathRewardValidate,
		Query:  map[string]string{"code": code},
	})
	if err != nil {
		return nil, err
	}
	f := objectFields(raw)
	return &RewardValidation{
		Valid:           f.boolean("valid"),
		RewardID:        f.str("rewardId"),
		UserID:          f.str("userId"),
		Amount:          f.float("amount"),
		Currency:        f.str("currency"),
		FulfillmentType: f.str("fulfillmentType"),
		Status:          f.str("status"),
		IsExpired:       f.boolean("isExpired"),
		IsRedeemed:      f.boolean("isRedeemed"),
		IsCancelled:     f.boolean("isCancelled"),
		Raw:             raw,
	}, nil
}

// RedeemReward consumes a discount or coupon code.
func (c *Client) RedeemReward(ctx context.Context, in RedeemRewardInput) (*RewardResult, error) {
	if err := c.require(opRedeemReward, "code", in.Code); err != nil {
		return nil, err
	}

	raw, err := c.send(ctx, opRedeemReward, httpclient.Request{
		Method: http.MethodPost,
		Path:   pathRewardRedeem,
		Body:   redeemBody{Code: in.Code, OrderReference: in.OrderReference},
	})
	if err != nil {
		return nil, err
	}
	return rewardResultFrom(raw), nil
}

// ClaimReward claims a pending reward.
func (c *Client) ClaimReward(ctx context.Context, rewardID string, in ClaimRewardInput) (*RewardResult, error) {
	if err := c.require(opClaimReward, "reward id", rewardID); err != nil {
		return nil, err
	}

	raw, err := c.send(ctx, opClaimReward, httpclient.Request{
		Method:     http.MethodPost,
		Path:       pathRewardClaim,
		PathParams: map[string]string{"rewardId": rewardID},
		Body:       claimBody(in),
	})
	if err != nil {
		return nil, err
	}
	return rewardResultFrom(raw), nil
}

// ListUserRewards fetches one page of a user's rewards.
func (c *Client) ListUserRewards(ctx context.Context, userID string, q ListRewardsQuery) (*UserRewards, error) {
	if err := c.require(opListUserRewards, "user id", userID); err != nil {
		return nil, err
	}

	query := map[string]string{}
	if q.Status != "" {
		query["status"] = q.Status
	}
	if q.CampaignID != "" {
		query["campaignId"] = q.CampaignID
	}
	if q.Page != 0 {
		query["page"] = strconv.Itoa(q.Page)
	}
	if q.Limit != 0 {
		query["limit"] = strconv.Itoa(q.Limit)
	}

	raw, err := c.send(ctx, opListUserRewards, httpclient.Request{
		Method:     http.MethodGet,
		Path:       pathUserRewards,
		PathParams: map[string]string{"userId": userID},
		Query:      query,
	})
	if err != nil {
		return nil, err
	}

	f := objectFields(raw)
	pagination := f.object("pagination")
	out := &UserRewards{
		Page:       int(pagination.int("page")),
		Limit:      int(pagination.int("limit")),
		TotalItems: pagination.int("totalItems"),
		TotalPages: int(pagination.int("totalPages")),
		Raw:        raw,
	}
	for _, item := range f.objects("rewards") {
		out.Rewards = append(out.Rewards, rewardFrom(item))
	}
	return out, nil
}

func rewardResultFrom(raw json.RawMessage) *RewardResult {
	f := objectFields(raw)
	return &RewardResult{
		Success: f.boolean("success"),
		Reward:  rewardFrom(f.object("reward")),
		Raw:     raw,
	}
}

// require rejects an empty argument locally, before any request is sent.
func (c *Client) require(op, name, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	err := fmt.Errorf("%s: %s is required: %w", op, name, ErrInvalidArgument)
	c.logFailure(op, err)
	return err
}
