package goout

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"parties247/internal/domain"
)

// Classification is the heuristic labelling of a scraped event.
type Classification struct {
	Region    domain.Region
	City      string
	MusicType domain.MusicType
	EventType domain.EventType
	Age       domain.Age
	Tags      []string
}

// Classify labels an event by keyword matching over its text fields.
func Classify(ev *ScrapedEvent) Classification {
	text := strings.ToLower(strings.Join(append([]string{ev.Title, ev.Description, ev.Venue, ev.Address}, ev.Categories...), " \n "))
	place := strings.ToLower(ev.Venue + " \n " + ev.Address)

	c := Classification{
		Region:    domain.RegionUnknown,
		MusicType: domain.MusicOther,
		EventType: domain.EventOther,
		Age:       domain.AgeAll,
	}

	// the address is authoritative for the region; fall back to the whole text
	c.Region, c.City = matchRegion(place)
	if c.Region == domain.RegionUnknown {
		c.Region, c.City = matchRegion(text)
	}

	for _, m := range musicOrder {
		if containsAny(text, m.keywords) {
			c.MusicType = m.music
			break
		}
	}

	for _, e := range eventOrder {
		if containsAny(text, e.keywords) {
			c.EventType = e.event
			break
		}
	}
	if c.EventType == domain.EventOther && ev.Venue != "" {
		c.EventType = domain.EventClub
	}

	if ev.MinAge >= 18 {
		c.Age = domain.AgeForMinimum(ev.MinAge)
	} else {
		for _, a := range ageOrder {
			if containsAny(text, a.keywords) {
				c.Age = a.age
				break
			}
		}
	}

	var tags []string
	if c.MusicType != domain.MusicOther {
		tags = append(tags, string(c.MusicType))
	}
	if c.EventType != domain.EventOther {
		tags = append(tags, string(c.EventType))
	}
	if c.Region != domain.RegionUnknown {
		tags = append(tags, string(c.Region))
	}
	if c.City != "" {
		tags = append(tags, c.City)
	}
	if ev.MinPrice != nil && *ev.MinPrice == 0 {
		tags = append(tags, "free")
	}
	if isWeekend(ev.Start) {
		tags = append(tags, "weekend")
	}
	tags = append(tags, ev.Categories...)
	c.Tags = domain.NormalizeTags(tags)
	return c
}

func matchRegion(text string) (domain.Region, string) {
	for _, rc := range regionOrder {
		for _, ct := range rc.cities {
			if containsAny(text, ct.keywords) {
				return rc.region, ct.name
			}
		}
	}
	return domain.RegionUnknown, ""
}

// isWeekend reports whether t falls on Thursday through Saturday in the site zone.
func isWeekend(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	switch t.In(domain.SiteTimeZone).Weekday() {
	case time.Thursday, time.Friday, time.Saturday:
		return true
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsKeyword(text, kw) {
			return true
		}
	}
	return false
}

// containsKeyword reports whether kw occurs in text as a whole word. Hebrew
// keywords may carry a single-letter prefix (ב, ה, ו, כ, ל, מ, ש).
func containsKeyword(text, kw string) bool {
	if kw == "" {
		return false
	}
	hebrew := isHebrew(firstRune(kw))
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		if boundaryBefore(text, i, hebrew) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		start = i + size
	}
	return false
}

func boundaryBefore(text string, i int, allowPrefix bool) bool {
	if i == 0 {
		return true
	}
	r, size := utf8.DecodeLastRuneInString(text[:i])
	if !isWordRune(r) {
		return true
	}
	if allowPrefix && strings.ContainsRune("בהוכלמש", r) {
		j := i - size
		if j == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:j])
		return !isWordRune(prev)
	}
	return false
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isHebrew(r rune) bool {
	return unicode.Is(unicode.Hebrew, r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
