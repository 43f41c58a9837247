package referral

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestValidateRewardCode(t *testing.T) {
	api := &fakeAPI{respond: func(*http.Request) string {
		return `{"valid":true,"rewardId":"rw1","userId":"u1","amount":10,"currency":"USD","status":"APPROVED","isExpired":false}`
	}}
	c := newTestClient(t, api)

	res, err := c.ValidateRewardCode(context.Background(), "ABC 123")
	if err != nil {
		t.Fatalf("ValidateRewardCode: %v", err)
	}
	if !res.Valid || res.RewardID != "rw1" || res.Amount != 10 || res.Currency != "USD" {
		t.Fatalf("unexpected validation %+v", res)
	}
	req := api.only(t)
	if req.method != http.MethodGet || req.path != "/v1/rewards/validate" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if got := req.query["code"]; len(got) != 1 || got[0] != "ABC 123" {
		t.Fatalf("code query = %v", got)
	}
}

func TestRedeemReward(t *testing.T) {
	api := &fakeAPI{respond: func(*http.Request) string {
		return `{"success":true,"reward":{"id":"rw1","userId":"u1","amount":"5.5","status":"PAID","discountCode":"ABC"}}`
	}}
	c := newTestClient(t, api)

	res, err := c.RedeemReward(context.Background(), RedeemRewardInput{Code: "ABC", OrderReference: "order_1"})
	if err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}
	if !res.Success || res.Reward.ID != "rw1" || res.Reward.Amount != 5.5 || res.Reward.Status != "PAID" {
		t.Fatalf("unexpected result %+v", res)
	}
	req := api.only(t)
	if req.method != http.MethodPost || req.path != "/v1/rewards/redeem" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if got := string(req.body); got != `{"code":"ABC","orderReference":"order_1"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestClaimRewardEscapesIDAndOmitsEmptyFields(t *testing.T) {
	api := &fakeAPI{respond: func(*http.Request) string {
		return `{"success":true,"reward":{"id":"rw 1","status":"APPROVED"}}`
	}}
	c := newTestClient(t, api)

	res, err := c.ClaimReward(context.Background(), "rw 1", ClaimRewardInput{CouponCode: "PARTNER-9"})
	if err != nil {
		t.Fatalf("ClaimReward: %v", err)
	}
	if res.Reward.Status != "APPROVED" {
		t.Fatalf("unexpected result %+v", res)
	}
	req := api.only(t)
	if req.path != "/v1/rewards/rw%201/claim" {
		t.Fatalf("path = %s", req.path)
	}
	if got := string(req.body); got != `{"couponCode":"PARTNER-9"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestListUserRewardsPassesPagingThrough(t *testing.T) {
	api := &fakeAPI{respond: func(*http.Request) string {
		return `{"rewards":[{"id":"rw1","amount":10,"Referral":{"referralCode":"REF1","campaignId":"c1"}},"junk"],` +
			`"pagination":{"page":2,"limit":10,"totalItems":11,"totalPages":2}}`
	}}
	c := newTestClient(t, api)

	res, err := c.ListUserRewards(context.Background(), "user_456", ListRewardsQuery{Status: "PAID", Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("ListUserRewards: %v", err)
	}
	if len(res.Rewards) != 2 || res.Rewards[0].ReferralCode != "REF1" || res.Rewards[0].CampaignID != "c1" {
		t.Fatalf("unexpected rewards %+v", res.Rewards)
	}
	if res.Rewards[1] != (Reward{}) {
		t.Fatalf("non-object entry should decode to zero reward, got %+v", res.Rewards[1])
	}
	if res.Page != 2 || res.TotalItems != 11 || res.TotalPages != 2 {
		t.Fatalf("unexpected pagination %+v", res)
	}

	req := api.only(t)
	if req.path != "/v1/users/user_456/rewards" {
		t.Fatalf("path = %s", req.path)
	}
	for key, want := range map[string]string{"status": "PAID", "page": "2", "limit": "10"} {
		if got := req.query[key]; len(got) != 1 || got[0] != want {
			t.Fatalf("%s = %v, want %s", key, got, want)
		}
	}
	if _, ok := req.query["campaignId"]; ok {
		t.Fatalf("empty campaignId should be omitted")
	}
}

func TestRewardCallsRequireArguments(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)
	ctx := context.Background()

	errs := []error{}
	_, err := c.ValidateRewardCode(ctx, " ")
	errs = append(errs, err)
	_, err = c.RedeemReward(ctx, RedeemRewardInput{})
	errs = append(errs, err)
	_, err = c.ClaimReward(ctx, "", ClaimRewardInput{})
	errs = append(errs, err)
	_, err = c.ListUserRewards(ctx, "", ListRewardsQuery{})
	errs = append(errs, err)

	for i, err := range errs {
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("call %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
	if len(api.requests) != 0 {
		t.Fatalf("no request should be sent, got %d", len(api.requests))
	}
}

func TestRewardCallsSurfaceTransportError(t *testing.T) {
	api := &fakeAPI{status: http.StatusBadRequest, respond: func(*http.Request) string {
		return `{"error":"This code has already been redeemed"}`
	}}
	c := newTestClient(t, api)

	_, err := c.RedeemReward(context.Background(), RedeemRewardInput{Code: "ABC"})
	var te *TransportError
	if !errors.As(err, &te) || te.Op != opRedeemReward || te.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected error %v", err)
	}
}
