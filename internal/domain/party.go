package domain

import (
	"context"
	"time"
)

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location describes where a party takes place.
type Location struct {
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Geo     *GeoPoint `json:"geo,omitempty"`
}

// Party is a single listed event.
// swagger:model Party
type Party struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	ImageURL     string     `json:"image_url"`
	Date         time.Time  `json:"date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Location     Location   `json:"location"`
	Description  string     `json:"description"`
	TicketURL    string     `json:"ticket_url"`
	Region       Region     `json:"region"`
	MusicType    MusicType  `json:"music_type"`
	EventType    EventType  `json:"event_type"`
	Age          Age        `json:"age"`
	Tags         []string   `json:"tags"`
	ScrapedTags  []string   `json:"-"`
	TicketPrice  *float64   `json:"ticket_price,omitempty"`
	ReferralCode string     `json:"referral_code,omitempty"`
	PixelID      string     `json:"pixel_id,omitempty"`
	SourceURL    string     `json:"source_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Normalize coerces enum fields into their enumerations and normalizes tags.
func (p *Party) Normalize() {
	if r, ok := ParseRegion(string(p.Region)); ok {
		p.Region = r
	} else {
		p.Region = RegionUnknown
	}
	if m, ok := ParseMusicType(string(p.MusicType)); ok {
		p.MusicType = m
	} else {
		p.MusicType = MusicOther
	}
	if e, ok := ParseEventType(string(p.EventType)); ok {
		p.EventType = e
	} else {
		p.EventType = EventOther
	}
	if a, ok := ParseAge(string(p.Age)); ok {
		p.Age = a
	} else {
		p.Age = AgeAll
	}
	p.Tags = NormalizeTags(p.Tags)
}

// Validate returns the list of violated required-field rules.
func (p *Party) Validate() []string {
	var errs []string
	if p.Name == "" {
		errs = append(errs, "name is required")
	}
	if p.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if p.TicketURL == "" {
		errs = append(errs, "ticket_url is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.Date) {
		errs = append(errs, "end_date must not be before date")
	}
	return errs
}

// PartyPatch holds optional field updates; nil fields are left unchanged.
type PartyPatch struct {
	Name         *string    `json:"name"`
	ImageURL     *string    `json:"image_url"`
	Date         *time.Time `json:"date"`
	EndDate      *time.Time `json:"end_date"`
	Location     *Location  `json:"location"`
	Description  *string    `json:"description"`
	TicketURL    *string    `json:"ticket_url"`
	Region       *Region    `json:"region"`
	MusicType    *MusicType `json:"music_type"`
	EventType    *EventType `json:"event_type"`
	Age          *Age       `json:"age"`
	Tags         *[]string  `json:"tags"`
	TicketPrice  *float64   `json:"ticket_price"`
	ReferralCode *string    `json:"referral_code"`
	PixelID      *string    `json:"pixel_id"`
}

// Apply copies every non-nil field of the patch onto p.
func (u PartyPatch) Apply(p *Party) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Date != nil {
		p.Date = *u.Date
	}
	if u.EndDate != nil {
		p.EndDate = u.EndDate
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.TicketURL != nil {
		p.TicketURL = *u.TicketURL
	}
	if u.Region != nil {
		p.Region = *u.Region
	}
	if u.MusicType != nil {
		p.MusicType = *u.MusicType
	}
	if u.EventType != nil {
		p.EventType = *u.EventType
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Tags != nil {
		p.Tags = *u.Tags
	}
	if u.TicketPrice != nil {
		p.TicketPrice = u.TicketPrice
	}
	if u.ReferralCode != nil {
		p.ReferralCode = *u.ReferralCode
	}
	if u.PixelID != nil {
		p.PixelID = *u.PixelID
	}
}

// PartyFilter narrows a party listing. Zero values mean "any".
type PartyFilter struct {
	Region    Region
	MusicType MusicType
	EventType EventType
	Age       Age
	Tag       string
	City      string
	Query     string
	From      *time.Time
	To        *time.Time
}

// Facet is a party column that can be counted for taxonomy pages.
type Facet string

const (
	FacetRegion    Facet = "region"
	FacetMusicType Facet = "music_type"
	FacetEventType Facet = "event_type"
	FacetAge       Facet = "age"
)

// ImportStatus is the outcome of importing one URL.
type ImportStatus string

const (
	ImportCreated   ImportStatus = "created"
	ImportDuplicate ImportStatus = "duplicate"
	ImportFailed    ImportStatus = "failed"
)

// ImportResult is the per-URL outcome of a batch import.
type ImportResult struct {
	URL     string       `json:"url"`
	Status  ImportStatus `json:"status"`
	PartyID string       `json:"party_id,omitempty"`
	Slug    string       `json:"slug,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ImportReport summarizes a batch import.
// swagger:model ImportReport
type ImportReport struct {
	Results    []ImportResult `json:"results"`
	Created    int            `json:"created"`
	Duplicates int            `json:"duplicates"`
	Failed     int            `json:"failed"`
}

// Add records a result and bumps the matching counter.
func (r *ImportReport) Add(res ImportResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case ImportCreated:
		r.Created++
	case ImportDuplicate:
		r.Duplicates++
	case ImportFailed:
		r.Failed++
	}
}

// PartyScraper turns a third-party event page into a party draft.
type PartyScraper interface {
	Scrape(ctx context.Context, pageURL string) (*Party, error)
}

// PartyRepository defines storage for parties.
type PartyRepository interface {
	Create(ctx context.Context, p *Party) error
	GetByID(ctx context.Context, id string) (*Party, error)
	GetBySlug(ctx context.Context, slug string) (*Party, error)
	GetBySourceURL(ctx context.Context, sourceURL string) (*Party, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, p *Party) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PartyFilter, params PaginationParams) ([]*Party, int, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Party, error)
	CountByFacet(ctx context.Context, facet Facet, since time.Time) (map[string]int, error)
}

// PartyService defines the business logic for listing and curating parties.
type PartyService interface {
	ImportFromURL(ctx context.Context, pageURL string) (*Party, error)
	ImportBatch(ctx context.Context, urls []string) (*ImportReport, error)
	Refresh(ctx context.Context, id string) (*Party, error)
	Create(ctx context.Context, p *Party) error
	Update(ctx context.Context, id string, patch PartyPatch) (*Party, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Party, error)
	GetBySlug(ctx context.Context, slug string) (*Party, error)
	List(ctx context.Context, filter PartyFilter, includePast bool, params PaginationParams) ([]*Party, int, error)
	SetReferralCode(ctx context.Context, id, code string) (*Party, error)
	DefaultReferralCode(ctx context.Context) (string, error)
	SetDefaultReferralCode(ctx context.Context, code string) error
	TicketLink(ctx context.Context, p *Party) (string, error)
}
