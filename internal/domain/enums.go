package domain

import "strings"

// Region is the geographic area a party takes place in.
type Region string

const (
	RegionNorth     Region = "north"
	RegionCenter    Region = "center"
	RegionSouth     Region = "south"
	RegionJerusalem Region = "jerusalem"
	RegionUnknown   Region = "unknown"
)

// Regions lists every region in display order.
var Regions = []Region{RegionCenter, RegionNorth, RegionSouth, RegionJerusalem, RegionUnknown}

// MusicType is the dominant genre of a party.
type MusicType string

const (
	MusicTechno     MusicType = "techno"
	MusicHouse      MusicType = "house"
	MusicTrance     MusicType = "trance"
	MusicMainstream MusicType = "mainstream"
	MusicHipHop     MusicType = "hiphop"
	MusicOther      MusicType = "other"
)

// MusicTypes lists every music type in display order.
var MusicTypes = []MusicType{MusicTechno, MusicHouse, MusicTrance, MusicMainstream, MusicHipHop, MusicOther}

// EventType is the kind of venue or format.
type EventType string

const (
	EventClub     EventType = "club"
	EventFestival EventType = "festival"
	EventNature   EventType = "nature"
	EventBar      EventType = "bar"
	EventBoat     EventType = "boat"
	EventOther    EventType = "other"
)

// EventTypes lists every event type in display order.
var EventTypes = []EventType{EventClub, EventFestival, EventNature, EventBar, EventBoat, EventOther}

// Age is the minimum-age bucket of the audience.
type Age string

const (
	AgeAll Age = "all"
	Age18  Age = "18+"
	Age21  Age = "21+"
	Age24  Age = "24+"
)

// Ages lists every age bucket in ascending order.
var Ages = []Age{AgeAll, Age18, Age21, Age24}

// ParseRegion reports whether s names a region.
func ParseRegion(s string) (Region, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Regions {
		if string(r) == s {
			return r, true
		}
	}
	return RegionUnknown, false
}

// ParseMusicType reports whether s names a music type.
func ParseMusicType(s string) (MusicType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range MusicTypes {
		if string(m) == s {
			return m, true
		}
	}
	return MusicOther, false
}

// ParseEventType reports whether s names an event type.
func ParseEventType(s string) (EventType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range EventTypes {
		if string(e) == s {
			return e, true
		}
	}
	return EventOther, false
}

// ParseAge reports whether s names an age bucket. A bare number ("21") is accepted.
func ParseAge(s string) (Age, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s != "" && s != string(AgeAll) && !strings.HasSuffix(s, "+") {
		s += "+"
	}
	for _, a := range Ages {
		if string(a) == s {
			return a, true
		}
	}
	return AgeAll, false
}

// AgeForMinimum maps an explicit minimum age to the highest bucket it satisfies.
func AgeForMinimum(minAge int) Age {
	switch {
	case minAge >= 24:
		return Age24
	case minAge >= 21:
		return Age21
	case minAge >= 18:
		return Age18
	default:
		return AgeAll
	}
}
