package domain

import (
	"context"
	"time"
)

// TaxonomyAxis is a browsable classification of parties.
type TaxonomyAxis string

const (
	AxisCity     TaxonomyAxis = "city"
	AxisGenre    TaxonomyAxis = "genre"
	AxisAudience TaxonomyAxis = "audience"
	AxisTime     TaxonomyAxis = "time"
)

var TaxonomyAxes = []TaxonomyAxis{AxisCity, AxisGenre, AxisAudience, AxisTime}

// TimeWindow is a value of the time axis.
type TimeWindow string

const (
	WindowToday    TimeWindow = "today"
	WindowTonight  TimeWindow = "tonight"
	WindowWeekend  TimeWindow = "weekend"
	WindowThisWeek TimeWindow = "this-week"
	WindowNextWeek TimeWindow = "next-week"
)

var TimeWindows = []TimeWindow{WindowToday, WindowTonight, WindowWeekend, WindowThisWeek, WindowNextWeek}

// TaxonomyValue is one page of an axis with the number of upcoming parties on it.
type TaxonomyValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Taxonomy lists the values of one axis.
// swagger:model Taxonomy
type Taxonomy struct {
	Axis   TaxonomyAxis    `json:"axis"`
	Values []TaxonomyValue `json:"values"`
}

// dayAt returns the wall-clock hour of the day addDays after t, so boundaries
// stay on the hour across daylight saving changes.
func dayAt(t time.Time, addDays, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+addDays, hour, 0, 0, 0, t.Location())
}

// WindowRange returns the [from, to) interval of w relative to now, in SiteTimeZone.
// Weeks run Sunday to Saturday and the weekend is Thursday through Saturday night.
func WindowRange(w TimeWindow, now time.Time) (from, to time.Time, ok bool) {
	local := now.In(SiteTimeZone)
	switch w {
	case WindowToday:
		return dayAt(local, 0, 0), dayAt(local, 1, 0), true
	case WindowTonight:
		// after midnight "tonight" is still the night that started yesterday
		if local.Hour() < 6 {
			return dayAt(local, -1, 18), dayAt(local, 0, 6), true
		}
		return dayAt(local, 0, 18), dayAt(local, 1, 6), true
	case WindowWeekend:
		sinceThu := (int(local.Weekday()) - int(time.Thursday) + 7) % 7
		offset := -sinceThu
		if sinceThu > 3 || (sinceThu == 3 && local.Hour() >= 6) {
			offset = 7 - sinceThu
		}
		return dayAt(local, offset, 0), dayAt(local, offset+3, 6), true
	case WindowThisWeek:
		return local, dayAt(local, 7-int(local.Weekday()), 0), true
	case WindowNextWeek:
		next := 7 - int(local.Weekday())
		return dayAt(local, next, 0), dayAt(local, next+7, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// TaxonomyService resolves taxonomy pages to party listings.
type TaxonomyService interface {
	ListTaxonomies(ctx context.Context) ([]Taxonomy, error)
	// Resolve maps an axis value to a party filter; unknown axes or values are ErrInvalidInput.
	Resolve(axis TaxonomyAxis, value string, now time.Time) (PartyFilter, error)
	ListParties(ctx context.Context, axis TaxonomyAxis, value string, params PaginationParams) ([]*Party, int, error)
}
