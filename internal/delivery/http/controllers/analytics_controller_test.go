package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parties247/internal/domain"
)

func TestAnalyticsController_Record(t *testing.T) {
	tests := []struct {
		name       string
		click      bool
		body       string
		err        error
		wantStatus int
	}{
		{name: "visit", body: `{"party_id":"p1"}`, wantStatus: http.StatusNoContent},
		{name: "click", click: true, body: `{"party_id":"p1"}`, wantStatus: http.StatusNoContent},
		{name: "missing id", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "unknown party", body: `{"party_id":"gone"}`, err: fmt.Errorf("increment stats: %w", domain.ErrNotFound), wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyticsService{err: tt.err}
			ctrl := NewAnalyticsController(testLogger, fake)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/analytics/visit", bytes.NewBufferString(tt.body))

			if tt.click {
				ctrl.RecordClick(rr, req)
			} else {
				ctrl.RecordVisit(rr, req)
			}

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				if tt.click {
					assert.Equal(t, []string{"p1"}, fake.clicks)
					assert.Empty(t, fake.visits)
				} else {
					assert.Equal(t, []string{"p1"}, fake.visits)
					assert.Empty(t, fake.clicks)
				}
			}
		})
	}
}

func TestAnalyticsController_Summary(t *testing.T) {
	day := func(s string) time.Time {
		v, err := time.Parse(time.DateOnly, s)
		require.NoError(t, err)
		return v
	}
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantFrom   time.Time
		wantTo     time.Time
	}{
		{name: "explicit range", query: "from=2025-06-01&to=2025-06-30", wantStatus: http.StatusOK, wantFrom: day("2025-06-01"), wantTo: day("2025-06-30")},
		// 2025-07-01 00:30 in Tel Aviv is still 2025-06-30 in UTC
		{name: "default range", query: "", wantStatus: http.StatusOK, wantFrom: day("2025-06-02"), wantTo: day("2025-07-01")},
		{name: "only to", query: "to=2025-01-30", wantStatus: http.StatusOK, wantFrom: day("2025-01-01"), wantTo: day("2025-01-30")},
		{name: "bad date", query: "from=01/06/2025", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyticsService{summary: &domain.AnalyticsSummary{Visits: 10, Clicks: 2, CTR: 0.2}}
			ctrl := NewAnalyticsController(testLogger, fake)
			ctrl.now = func() time.Time { return time.Date(2025, 7, 1, 0, 30, 0, 0, domain.SiteTimeZone) }
			rr := httptest.NewRecorder()

			ctrl.Summary(rr, httptest.NewRequest(http.MethodGet, "/admin/analytics/summary?"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Zero(t, fake.callCount)
				return
			}
			assert.True(t, tt.wantFrom.Equal(fake.lastFrom), "from %s", fake.lastFrom)
			assert.True(t, tt.wantTo.Equal(fake.lastTo), "to %s", fake.lastTo)
			var got domain.AnalyticsSummary
			decodeEnvelope(t, rr, &got)
			assert.InDelta(t, 0.2, got.CTR, 1e-9)
		})
	}
}

func TestAnalyticsController_PartyDaily(t *testing.T) {
	t.Run("range too long", func(t *testing.T) {
		fake := &fakeAnalyticsService{err: fmt.Errorf("%w: range is longer than 366 days", domain.ErrInvalidInput)}
		ctrl := NewAnalyticsController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/admin/analytics/parties/p1?from=2023-01-01&to=2025-01-01", nil)
		req.SetPathValue("id", "p1")
		rr := httptest.NewRecorder()

		ctrl.PartyDaily(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "p1", fake.lastID)
	})

	t.Run("unknown party", func(t *testing.T) {
		fake := &fakeAnalyticsService{err: fmt.Errorf("get party: %w", domain.ErrNotFound)}
		ctrl := NewAnalyticsController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/admin/analytics/parties/nope", nil)
		req.SetPathValue("id", "nope")
		rr := httptest.NewRecorder()

		ctrl.PartyDaily(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("days", func(t *testing.T) {
		d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		fake := &fakeAnalyticsService{daily: []domain.PartyStats{{PartyID: "p1", Day: d, Visits: 3, Clicks: 1}}}
		ctrl := NewAnalyticsController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/admin/analytics/parties/p1?from=2025-06-01&to=2025-06-01", nil)
		req.SetPathValue("id", "p1")
		rr := httptest.NewRecorder()

		ctrl.PartyDaily(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got []domain.PartyStats
		decodeEnvelope(t, rr, &got)
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].Visits)
	})
}
