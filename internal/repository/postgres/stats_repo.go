package postgres

import (
	"context"
	"database/sql"
	"time"

	"parties247/internal/domain"
)

type statsRepository struct {
	DB *sql.DB
}

// NewStatsRepository returns a domain.StatsRepository implemented with Postgres.
func NewStatsRepository(db *sql.DB) domain.StatsRepository {
	return &statsRepository{DB: db}
}

// Increment adds to the day's counters, creating the row on first use.
// An unknown party surfaces as domain.ErrNotFound through the foreign key.
func (r *statsRepository) Increment(ctx context.Context, partyID string, day time.Time, visits, clicks int) error {
	query := `
		INSERT INTO party_stats (party_id, day, visits, clicks)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (party_id, day) DO UPDATE
		SET visits = party_stats.visits + EXCLUDED.visits,
		    clicks = party_stats.clicks + EXCLUDED.clicks
	`
	_, err := r.DB.ExecContext(ctx, query, partyID, day.Format(time.DateOnly), visits, clicks)
	return mapError(err)
}

func (r *statsRepository) Totals(ctx context.Context, from, to time.Time) ([]domain.PartyTotals, error) {
	query := `
		SELECT s.party_id, p.name, p.slug, SUM(s.visits), SUM(s.clicks)
		FROM party_stats s
		JOIN parties p ON p.id = s.party_id
		WHERE s.day BETWEEN $1 AND $2
		GROUP BY s.party_id, p.name, p.slug
		ORDER BY SUM(s.visits) DESC, SUM(s.clicks) DESC, p.name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := make([]domain.PartyTotals, 0)
	for rows.Next() {
		var t domain.PartyTotals
		if err := rows.Scan(&t.PartyID, &t.PartyName, &t.Slug, &t.Visits, &t.Clicks); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *statsRepository) Daily(ctx context.Context, partyID string, from, to time.Time) ([]domain.PartyStats, error) {
	query := `
		SELECT party_id, day, visits, clicks
		FROM party_stats
		WHERE party_id = $1 AND day BETWEEN $2 AND $3
		ORDER BY day ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, partyID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	stats := make([]domain.PartyStats, 0)
	for rows.Next() {
		var s domain.PartyStats
		if err := rows.Scan(&s.PartyID, &s.Day, &s.Visits, &s.Clicks); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
