package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/moneyledger/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegistry(registry)

	if m.Operations == nil || m.HTTPRequests == nil || m.RateLimitHits == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.RateLimitHits.Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestObserveOperation(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveOperation("add_income", 10*time.Millisecond, nil)
	m.ObserveOperation("add_income", 10*time.Millisecond, nil)
	m.ObserveOperation("add_expense", time.Millisecond, domain.ErrInsufficientBalance)

	if got := testutil.ToFloat64(m.Operations.WithLabelValues("add_income", "ok")); got != 2 {
		t.Fatalf("expected 2 successful incomes, got %v", got)
	}

	if got := testutil.ToFloat64(m.Operations.WithLabelValues("add_expense", "insufficient_balance")); got != 1 {
		t.Fatalf("expected 1 rejected expense, got %v", got)
	}
}

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.ErrInvalidAmount, "invalid_input"},
		{domain.ErrAccountNotFound, "not_found"},
		{domain.ErrInsufficientBalance, "insufficient_balance"},
		{domain.ErrHasHistory, "precondition_failed"},
		{fmt.Errorf("commit: %w", domain.ErrConflict), "conflict"},
		{domain.ErrStoreUnavailable, "store_unavailable"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		if got := Result(tt.err); got != tt.want {
			t.Fatalf("Result(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
