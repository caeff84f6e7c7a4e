package domain

import (
	"time"
	_ "time/tzdata"
)

// SiteTimeZone is the zone used for calendar windows (today, weekend, daily stats).
var SiteTimeZone = loadSiteTimeZone()

func loadSiteTimeZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		return time.FixedZone("IST", 2*60*60)
	}
	return loc
}
