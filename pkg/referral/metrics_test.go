package referral

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func durationSamples(t *testing.T, op string) uint64 {
	t.Helper()
	m, ok := requestDuration.WithLabelValues(op).(prometheus.Metric)
	if !ok {
		t.Fatalf("histogram observer is not a metric")
	}
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	return out.GetHistogram().GetSampleCount()
}

func TestMetricsCountOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(requestsTotal.WithLabelValues(opGetStats, outcomeOK))
	errBefore := testutil.ToFloat64(requestsTotal.WithLabelValues(opGetStats, outcomeError))
	samplesBefore := durationSamples(t, opGetStats)

	ok := newTestClient(t, &fakeAPI{respond: func(*http.Request) string { return `{}` }})
	if _, err := ok.GetStats(context.Background(), ""); err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	failing := newTestClient(t, &fakeAPI{status: http.StatusInternalServerError})
	if _, err := failing.GetStats(context.Background(), ""); err == nil {
		t.Fatalf("expected error")
	}

	if got := testutil.ToFloat64(requestsTotal.WithLabelValues(opGetStats, outcomeOK)) - okBefore; got != 1 {
		t.Fatalf("ok outcome delta = %v", got)
	}
	if got := testutil.ToFloat64(requestsTotal.WithLabelValues(opGetStats, outcomeError)) - errBefore; got != 1 {
		t.Fatalf("error outcome delta = %v", got)
	}
	if got := durationSamples(t, opGetStats) - samplesBefore; got != 2 {
		t.Fatalf("duration samples delta = %d", got)
	}
}

func TestMetricsSkipLocalValidationFailures(t *testing.T) {
	before := testutil.ToFloat64(requestsTotal.WithLabelValues(opCreateReferral, outcomeError))
	c := newTestClient(t, &fakeAPI{})
	if _, err := c.CreateReferral(context.Background(), CreateReferralInput{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if got := testutil.ToFloat64(requestsTotal.WithLabelValues(opCreateReferral, outcomeError)); got != before {
		t.Fatalf("validation failure should not count as a request, delta = %v", got-before)
	}
}
