package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parties247/internal/domain"
)

func newAnalyticsFixture(known ...string) (*fakeStatsRepo, *analyticsService) {
	repo := newFakeStatsRepo(known...)
	parties := newFakePartyRepo()
	for _, id := range known {
		parties.byID[id] = &domain.Party{ID: id}
	}
	svc := NewAnalyticsService(repo, parties, time.Second).(*analyticsService)
	svc.now = clock
	return repo, svc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnalyticsService_Record(t *testing.T) {
	ctx := context.Background()
	repo, svc := newAnalyticsFixture("p-1")

	require.NoError(t, svc.RecordVisit(ctx, "p-1"))
	require.NoError(t, svc.RecordVisit(ctx, "p-1"))
	require.NoError(t, svc.RecordClick(ctx, "p-1"))

	s := repo.counters["p-1|2025-07-01"]
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Visits)
	assert.Equal(t, 1, s.Clicks)

	require.ErrorIs(t, svc.RecordVisit(ctx, "p-unknown"), domain.ErrNotFound)
	require.ErrorIs(t, svc.RecordClick(ctx, " "), domain.ErrInvalidInput)
}

func TestStatsDay_UsesSiteTimeZone(t *testing.T) {
	// 22:30 UTC on June 30 is already July 1 in Israel
	got := statsDay(time.Date(2025, 6, 30, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, day(2025, 7, 1), got)
}

func TestAnalyticsService_Summary(t *testing.T) {
	ctx := context.Background()
	repo, svc := newAnalyticsFixture()
	repo.totals = []domain.PartyTotals{
		{PartyID: "p-1", PartyName: "A", Visits: 100, Clicks: 25},
		{PartyID: "p-2", PartyName: "B", Visits: 0, Clicks: 0},
	}

	sum, err := svc.Summary(ctx, day(2025, 6, 1), day(2025, 6, 30))
	require.NoError(t, err)
	assert.Equal(t, 100, sum.Visits)
	assert.Equal(t, 25, sum.Clicks)
	assert.InDelta(t, 0.25, sum.CTR, 1e-9)
	assert.InDelta(t, 0.25, sum.Parties[0].CTR, 1e-9)
	assert.Zero(t, sum.Parties[1].CTR)
}

func TestAnalyticsService_RangeValidation(t *testing.T) {
	ctx := context.Background()
	_, svc := newAnalyticsFixture()

	tests := []struct {
		name     string
		from, to time.Time
		wantErr  bool
	}{
		{"single day", day(2025, 7, 1), day(2025, 7, 1), false},
		{"full leap year", day(2024, 1, 1), day(2024, 12, 31), false},
		{"reversed", day(2025, 7, 2), day(2025, 7, 1), true},
		{"too long", day(2024, 1, 1), day(2025, 1, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Summary(ctx, tt.from, tt.to)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAnalyticsService_DailyFillsGaps(t *testing.T) {
	ctx := context.Background()
	repo, svc := newAnalyticsFixture("p-1")
	require.NoError(t, repo.Increment(ctx, "p-1", day(2025, 7, 2), 5, 1))

	rows, err := svc.Daily(ctx, "p-1", day(2025, 7, 1), day(2025, 7, 3))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.PartyStats{PartyID: "p-1", Day: day(2025, 7, 1)}, rows[0])
	assert.Equal(t, 5, rows[1].Visits)
	assert.Equal(t, day(2025, 7, 3), rows[2].Day)
}

func TestAnalyticsService_DailyUnknownParty(t *testing.T) {
	_, svc := newAnalyticsFixture("p-1")

	rows, err := svc.Daily(context.Background(), "p-missing", day(2025, 7, 1), day(2025, 7, 3))
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, rows)
}
