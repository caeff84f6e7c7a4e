package domain

import (
	"context"
	"time"
)

// Carousel is a named, ordered shelf of parties.
// swagger:model Carousel
type Carousel struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	PartyIDs  []string  `json:"party_ids"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCarousel returns a carousel with deduplicated party IDs. ID and Order are set on create.
func NewCarousel(title string, partyIDs []string, createdAt, updatedAt time.Time) *Carousel {
	return &Carousel{
		Title:     title,
		PartyIDs:  DedupeIDs(partyIDs),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// DedupeIDs removes empty and repeated IDs keeping first-seen order.
func DedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CarouselWithParties is a carousel with its parties resolved in shelf order.
// swagger:model CarouselWithParties
type CarouselWithParties struct {
	*Carousel
	Parties []*Party `json:"parties"`
}

// CarouselRepository defines storage for carousels.
type CarouselRepository interface {
	// Create stores c after the last carousel, setting its ID and Order.
	Create(ctx context.Context, c *Carousel) error
	GetByID(ctx context.Context, id string) (*Carousel, error)
	Update(ctx context.Context, c *Carousel) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Carousel, error)
	// SetOrder assigns order 0..n-1 following ids in a single transaction.
	SetOrder(ctx context.Context, ids []string) error
}

// CarouselService defines carousel curation and homepage resolution.
type CarouselService interface {
	Create(ctx context.Context, title string, partyIDs []string) (*Carousel, error)
	Update(ctx context.Context, id string, title *string, partyIDs []string) (*Carousel, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) ([]*Carousel, error)
	List(ctx context.Context) ([]*Carousel, error)
	GetWithParties(ctx context.Context, id string) (*CarouselWithParties, error)
	ListWithParties(ctx context.Context) ([]*CarouselWithParties, error)
}
