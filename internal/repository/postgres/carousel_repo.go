package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"parties247/internal/domain"
)

// carouselOrderLock serializes writers of carousels.sort_order.
const carouselOrderLock int64 = 247000001

type carouselRepository struct {
	DB *sql.DB
}

// NewCarouselRepository returns a domain.CarouselRepository implemented with Postgres.
func NewCarouselRepository(db *sql.DB) domain.CarouselRepository {
	return &carouselRepository{DB: db}
}

func scanCarousel(row rowScanner) (*domain.Carousel, error) {
	c := &domain.Carousel{}
	var ids pq.StringArray
	if err := row.Scan(&c.ID, &c.Title, &ids, &c.Order, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	c.PartyIDs = []string(ids)
	if c.PartyIDs == nil {
		c.PartyIDs = []string{}
	}
	return c, nil
}

// Create appends c after the last carousel and sets c.ID and c.Order.
func (r *carouselRepository) Create(ctx context.Context, c *domain.Carousel) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, carouselOrderLock); err != nil {
		return fmt.Errorf("lock carousel order: %w", err)
	}
	query := `
		INSERT INTO carousels (title, party_ids, sort_order, created_at, updated_at)
		SELECT $1, $2, COALESCE(MAX(sort_order) + 1, 0), $3, $4 FROM carousels
		RETURNING id, sort_order
	`
	if err = tx.QueryRowContext(ctx, query, c.Title, pq.Array(c.PartyIDs), c.CreatedAt, c.UpdatedAt).Scan(&c.ID, &c.Order); err != nil {
		return mapError(err)
	}
	return tx.Commit()
}

func (r *carouselRepository) GetByID(ctx context.Context, id string) (*domain.Carousel, error) {
	query := `
		SELECT id, title, party_ids, sort_order, created_at, updated_at
		FROM carousels
		WHERE id = $1
	`
	return scanCarousel(r.DB.QueryRowContext(ctx, query, id))
}

func (r *carouselRepository) Update(ctx context.Context, c *domain.Carousel) error {
	query := `UPDATE carousels SET title = $2, party_ids = $3, updated_at = $4 WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, c.ID, c.Title, pq.Array(c.PartyIDs), c.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *carouselRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM carousels WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *carouselRepository) List(ctx context.Context) ([]*domain.Carousel, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, party_ids, sort_order, created_at, updated_at
		FROM carousels
		ORDER BY sort_order ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	carousels := make([]*domain.Carousel, 0)
	for rows.Next() {
		c, err := scanCarousel(rows)
		if err != nil {
			return nil, err
		}
		carousels = append(carousels, c)
	}
	return carousels, rows.Err()
}

func (r *carouselRepository) SetOrder(ctx context.Context, ids []string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, carouselOrderLock); err != nil {
		return fmt.Errorf("lock carousel order: %w", err)
	}
	for i, id := range ids {
		result, err := tx.ExecContext(ctx, `UPDATE carousels SET sort_order = $1, updated_at = NOW() WHERE id = $2`, i, id)
		if err != nil {
			return mapError(err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
	}
	return tx.Commit()
}
