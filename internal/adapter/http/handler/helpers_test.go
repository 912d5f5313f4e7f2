package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/moneyledger/internal/adapter/http/dto"
	"github.com/iho/moneyledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts/paginate?limit=50", nil)
	got, err := parseIntQuery(req, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	got, err = parseIntQuery(req, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "missing value falls back to default")

	req = httptest.NewRequest(http.MethodGet, "/accounts/paginate?limit=invalid", nil)
	_, err = parseIntQuery(req, "limit", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseTimeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/transactions?from=2024-03-01&to=2024-03-31&at=2024-03-05T10:00:00Z&bad=03/01/2024", nil)

	from, err := parseTimeQuery(req, "from", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *from)

	to, err := parseTimeQuery(req, "to", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), *to)

	at, err := parseTimeQuery(req, "at", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), at.UTC(), "timestamps are taken as given")

	missing, err := parseTimeQuery(req, "missing", false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = parseTimeQuery(req, "bad", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound, "not_found"},
		{"transaction not found", domain.ErrTransactionNotFound, http.StatusNotFound, "not_found"},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_input"},
		{"self transfer", domain.ErrSelfTransfer, http.StatusBadRequest, "invalid_input"},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance"},
		{"non-zero balance", domain.ErrNonZeroBalance, http.StatusPreconditionFailed, "precondition_failed"},
		{"has history", domain.ErrHasHistory, http.StatusPreconditionFailed, "precondition_failed"},
		{"conflict", fmt.Errorf("commit: %w", domain.ErrConflict), http.StatusConflict, "conflict"},
		{"store down", domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := mapDomainError(tt.err)
			assert.Equal(t, tt.expected, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	t.Run("conflict carries retry hint", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeError(rr, httptest.NewRequest(http.MethodPost, "/", nil), domain.ErrConflict)

		require.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "1", rr.Header().Get("Retry-After"))

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "conflict", resp.Code)
		assert.Equal(t, "Conflict", resp.Error)
	})

	t.Run("internal errors are not echoed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: secret detail"))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret detail")
	})

	t.Run("domain errors keep their message", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), domain.ErrSelfTransfer)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, domain.ErrSelfTransfer.Error(), resp.Message)
	})
}
