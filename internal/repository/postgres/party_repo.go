package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"parties247/internal/domain"
)

const partyColumns = `id, slug, name, image_url, date, end_date, location_name, location_address,
	location_lat, location_lng, description, ticket_url, region, music_type, event_type, age,
	tags, ticket_price, referral_code, pixel_id, source_url, created_at, updated_at, scraped_tags`

var facetColumns = map[domain.Facet]string{
	domain.FacetRegion:    "region",
	domain.FacetMusicType: "music_type",
	domain.FacetEventType: "event_type",
	domain.FacetAge:       "age",
}

type partyRepository struct {
	DB *sql.DB
}

// NewPartyRepository returns a domain.PartyRepository implemented with Postgres.
func NewPartyRepository(db *sql.DB) domain.PartyRepository {
	return &partyRepository{DB: db}
}

func scanParty(row rowScanner) (*domain.Party, error) {
	p := &domain.Party{}
	var (
		endNull          sql.NullTime
		latNull, lngNull sql.NullFloat64
		priceNull        sql.NullFloat64
		sourceNull       sql.NullString
		region, music    string
		eventType, age   string
		tags, scraped    pq.StringArray
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.ImageURL, &p.Date, &endNull, &p.Location.Name, &p.Location.Address,
		&latNull, &lngNull, &p.Description, &p.TicketURL, &region, &music, &eventType, &age,
		&tags, &priceNull, &p.ReferralCode, &p.PixelID, &sourceNull, &p.CreatedAt, &p.UpdatedAt, &scraped,
	)
	if err != nil {
		return nil, mapError(err)
	}
	p.Region = domain.Region(region)
	p.MusicType = domain.MusicType(music)
	p.EventType = domain.EventType(eventType)
	p.Age = domain.Age(age)
	p.Tags = []string(tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.ScrapedTags = []string(scraped)
	if endNull.Valid {
		p.EndDate = &endNull.Time
	}
	if latNull.Valid && lngNull.Valid {
		p.Location.Geo = &domain.GeoPoint{Lat: latNull.Float64, Lng: lngNull.Float64}
	}
	if priceNull.Valid {
		p.TicketPrice = &priceNull.Float64
	}
	if sourceNull.Valid {
		p.SourceURL = sourceNull.String
	}
	return p, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func geoArgs(g *domain.GeoPoint) (any, any) {
	if g == nil {
		return nil, nil
	}
	return g.Lat, g.Lng
}

func (r *partyRepository) Create(ctx context.Context, p *domain.Party) error {
	query := `
		INSERT INTO parties (slug, name, image_url, date, end_date, location_name, location_address,
			location_lat, location_lng, description, ticket_url, region, music_type, event_type, age,
			tags, ticket_price, referral_code, pixel_id, source_url, created_at, updated_at, scraped_tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NULLIF($20, ''), $21, $22, $23)
		RETURNING id
	`
	lat, lng := geoArgs(p.Location.Geo)
	err := r.DB.QueryRowContext(ctx, query,
		p.Slug, p.Name, p.ImageURL, p.Date, p.EndDate, p.Location.Name, p.Location.Address,
		lat, lng, p.Description, p.TicketURL, string(p.Region), string(p.MusicType), string(p.EventType), string(p.Age),
		pq.Array(p.Tags), p.TicketPrice, p.ReferralCode, p.PixelID, p.SourceURL, p.CreatedAt, p.UpdatedAt,
		pq.Array(nonNilTags(p.ScrapedTags)),
	).Scan(&p.ID)
	return mapError(err)
}

func (r *partyRepository) getOne(ctx context.Context, where string, arg any) (*domain.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE ` + where
	return scanParty(r.DB.QueryRowContext(ctx, query, arg))
}

func (r *partyRepository) GetByID(ctx context.Context, id string) (*domain.Party, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *partyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Party, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

func (r *partyRepository) GetBySourceURL(ctx context.Context, sourceURL string) (*domain.Party, error) {
	return r.getOne(ctx, "source_url = $1", sourceURL)
}

func (r *partyRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM parties WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *partyRepository) Update(ctx context.Context, p *domain.Party) error {
	query := `
		UPDATE parties SET slug = $2, name = $3, image_url = $4, date = $5, end_date = $6,
			location_name = $7, location_address = $8, location_lat = $9, location_lng = $10,
			description = $11, ticket_url = $12, region = $13, music_type = $14, event_type = $15,
			age = $16, tags = $17, ticket_price = $18, referral_code = $19, pixel_id = $20,
			source_url = NULLIF($21, ''), updated_at = $22, scraped_tags = $23
		WHERE id = $1
	`
	lat, lng := geoArgs(p.Location.Geo)
	result, err := r.DB.ExecContext(ctx, query,
		p.ID, p.Slug, p.Name, p.ImageURL, p.Date, p.EndDate, p.Location.Name, p.Location.Address,
		lat, lng, p.Description, p.TicketURL, string(p.Region), string(p.MusicType), string(p.EventType),
		string(p.Age), pq.Array(p.Tags), p.TicketPrice, p.ReferralCode, p.PixelID, p.SourceURL, p.UpdatedAt,
		pq.Array(nonNilTags(p.ScrapedTags)),
	)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *partyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildPartyWhere(f domain.PartyFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Region != "" {
		add("region = $%d", string(f.Region))
	}
	if f.MusicType != "" {
		add("music_type = $%d", string(f.MusicType))
	}
	if f.EventType != "" {
		add("event_type = $%d", string(f.EventType))
	}
	if f.Age != "" {
		add("age = $%d", string(f.Age))
	}
	if f.Tag != "" {
		add("$%d = ANY(tags)", strings.ToLower(strings.TrimSpace(f.Tag)))
	}
	if f.City != "" {
		add("(location_address ILIKE $%[1]d OR location_name ILIKE $%[1]d)", "%"+escapeLike(strings.TrimSpace(f.City))+"%")
	}
	if f.Query != "" {
		add("name ILIKE $%d", "%"+escapeLike(strings.TrimSpace(f.Query))+"%")
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date < $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *partyRepository) List(ctx context.Context, filter domain.PartyFilter, params domain.PaginationParams) ([]*domain.Party, int, error) {
	where, args := buildPartyWhere(filter)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM parties`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM parties%s ORDER BY date ASC, id ASC LIMIT $%d OFFSET $%d`,
		partyColumns, where, n+1, n+2)
	args = append(args, params.PageSize, params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	parties := make([]*domain.Party, 0)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, 0, err
		}
		parties = append(parties, p)
	}
	return parties, total, rows.Err()
}

func (r *partyRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Party, error) {
	parties := make([]*domain.Party, 0, len(ids))
	if len(ids) == 0 {
		return parties, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+partyColumns+` FROM parties WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (r *partyRepository) CountByFacet(ctx context.Context, facet domain.Facet, since time.Time) (map[string]int, error) {
	col, ok := facetColumns[facet]
	if !ok {
		return nil, fmt.Errorf("%w: unknown facet %q", domain.ErrInvalidInput, facet)
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+col+`, COUNT(*) FROM parties WHERE date >= $1 GROUP BY `+col, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var value string
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		counts[value] = n
	}
	return counts, rows.Err()
}
