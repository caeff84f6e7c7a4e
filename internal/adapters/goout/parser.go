package goout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"parties247/internal/domain"
)

const nextDataID = "__NEXT_DATA__"

// ScrapedEvent is the structured data extracted from an event page before classification.
type ScrapedEvent struct {
	Title       string
	Start       time.Time
	End         *time.Time
	Venue       string
	Address     string
	Geo         *domain.GeoPoint
	ImageURL    string
	Description string
	Categories  []string
	MinAge      int
	// MinPrice is the cheapest ticket; nil when the page lists no tickets.
	MinPrice *float64
	PageURL  string
}

var errNoTitle = errors.New("page has no event title")

// event object locations inside the Next.js payload, most specific first
var eventPaths = [][]string{
	{"props", "pageProps", "event"},
	{"props", "pageProps", "eventData"},
	{"props", "pageProps", "data", "event"},
}

// Parse extracts an event from the page's embedded JSON payload, falling back
// to Open Graph meta tags when the payload is missing or malformed. Relative
// payload images resolve against imageBaseURL, or against pageURL when it is empty.
func Parse(page []byte, pageURL, imageBaseURL string) (*ScrapedEvent, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	payload, meta := scanDocument(doc)

	ev := &ScrapedEvent{PageURL: pageURL}
	var payloadErr error
	if payload != "" {
		var root map[string]any
		if err := json.Unmarshal([]byte(payload), &root); err != nil {
			payloadErr = fmt.Errorf("failed to decode embedded payload: %w", err)
		} else if obj := findEvent(root); obj != nil {
			if err := fillFromPayload(ev, obj); err != nil {
				return nil, err
			}
		}
	}
	if ev.ImageURL != "" {
		base := imageBaseURL
		if base == "" {
			base = pageURL
		} else if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		ev.ImageURL = resolveURL(base, ev.ImageURL)
	} else {
		ev.ImageURL = resolveURL(pageURL, meta["og:image"])
	}
	if ev.Title == "" {
		ev.Title = meta["og:title"]
	}
	if ev.Description == "" {
		ev.Description = meta["og:description"]
	}
	if ev.Start.IsZero() && meta["event:start_time"] != "" {
		if t, err := parseTime(meta["event:start_time"]); err == nil {
			ev.Start = t
		}
	}
	if ev.Title == "" {
		return nil, errors.Join(errNoTitle, payloadErr)
	}
	if ev.Start.IsZero() {
		return nil, errors.Join(fmt.Errorf("event %q has no start date", ev.Title), payloadErr)
	}
	return ev, nil
}

// scanDocument returns the __NEXT_DATA__ script body and the page's og: and event: meta tags.
func scanDocument(doc *html.Node) (string, map[string]string) {
	var payload string
	meta := make(map[string]string)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				if payload == "" && attr(n, "id") == nextDataID && n.FirstChild != nil {
					payload = n.FirstChild.Data
				}
			case "meta":
				key := attr(n, "property")
				if key == "" {
					key = attr(n, "name")
				}
				if strings.HasPrefix(key, "og:") || strings.HasPrefix(key, "event:") {
					if _, seen := meta[key]; !seen {
						meta[key] = strings.TrimSpace(attr(n, "content"))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return payload, meta
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findEvent(root map[string]any) map[string]any {
	for _, path := range eventPaths {
		if obj, ok := lookup(root, path...).(map[string]any); ok {
			return obj
		}
	}
	return nil
}

func lookup(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func fillFromPayload(ev *ScrapedEvent, obj map[string]any) error {
	ev.Title = strings.TrimSpace(firstString(obj, "Title", "title", "Name", "name"))
	ev.Description = strings.TrimSpace(firstString(obj, "Description", "description"))
	ev.Venue = strings.TrimSpace(firstString(obj, "PlaceName", "placeName", "Venue", "venue"))
	ev.Address = strings.TrimSpace(firstString(obj, "Adress", "Address", "address", "location"))

	if raw := first(obj, "StartingDate", "startingDate", "StartDate", "startDate"); raw != nil {
		t, err := parseTime(raw)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		ev.Start = t
	}
	if raw := first(obj, "EndingDate", "endingDate", "EndDate", "endDate"); raw != nil {
		if t, err := parseTime(raw); err == nil && !t.Before(ev.Start) {
			ev.End = &t
		}
	}

	switch img := first(obj, "CoverImage", "coverImage", "Image", "image").(type) {
	case string:
		ev.ImageURL = img
	case map[string]any:
		ev.ImageURL = firstString(img, "Url", "url", "src")
	}

	ev.Geo = parseGeo(obj)
	ev.Categories = parseCategories(obj)
	ev.MinAge = parseMinAge(first(obj, "MinAge", "minAge", "Age", "age"))
	ev.MinPrice = parseMinPrice(first(obj, "Tickets", "tickets"))
	return nil
}

func first(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime accepts RFC3339 strings, zone-less local times (site zone) and unix milliseconds.
func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UTC(), nil
		}
		for _, layout := range timeLayouts[1:] {
			if ts, err := time.ParseInLocation(layout, s, domain.SiteTimeZone); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func parseGeo(obj map[string]any) *domain.GeoPoint {
	src := obj
	if loc, ok := first(obj, "Location", "geo", "Geo").(map[string]any); ok {
		src = loc
	}
	lat, okLat := toFloat(first(src, "lat", "Lat", "Latitude", "latitude"))
	lng, okLng := toFloat(first(src, "lng", "Lng", "lon", "Longitude", "longitude"))
	if !okLat || !okLng || (lat == 0 && lng == 0) {
		return nil
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil
	}
	return &domain.GeoPoint{Lat: lat, Lng: lng}
}

func parseCategories(obj map[string]any) []string {
	var out []string
	add := func(v any) {
		switch c := v.(type) {
		case string:
			if s := strings.TrimSpace(c); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if s := strings.TrimSpace(firstString(c, "Name", "name", "Title", "title")); s != "" {
				out = append(out, s)
			}
		}
	}
	for _, key := range []string{"Categories", "categories", "Tags", "tags"} {
		if list, ok := obj[key].([]any); ok {
			for _, v := range list {
				add(v)
			}
		}
	}
	for _, key := range []string{"Genre", "genre", "MusicGenre", "musicGenre"} {
		add(obj[key])
	}
	return out
}

func parseMinAge(v any) int {
	switch a := v.(type) {
	case float64:
		return int(a)
	case string:
		digits := strings.TrimFunc(a, func(r rune) bool { return r < '0' || r > '9' })
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func parseMinPrice(v any) *float64 {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	best := math.Inf(1)
	found := false
	for _, item := range list {
		t, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p, ok := toFloat(first(t, "Price", "price"))
		if !ok || p < 0 {
			continue
		}
		found = true
		if p < best {
			best = p
		}
	}
	if !found {
		return nil
	}
	return &best
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), "₪")), 64)
		return f, err == nil
	}
	return 0, false
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
