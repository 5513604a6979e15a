package journal

import (
	"fmt"
	"sort"
	"time"

	"github.com/geojot/geojot/geo"
)

// MemoryRadiusKm is how close the viewer must be to a past record's
// location for it to resurface as a memory.
const MemoryRadiusKm = 0.1

// MatchMemories finds the viewer's past records within MemoryRadiusKm of
// the current position. Records created today (or dated in the future) are
// excluded. The result is sorted by recency, most recent memory first, and
// is never nil.
func MatchMemories(today time.Time, viewerID string, at geo.Point, records []Record) []Memory {
	memories := make([]Memory, 0)
	for _, r := range records {
		if r.UserID != viewerID {
			continue
		}
		if geo.DistanceKm(at, geo.Point{Lat: r.Location.Lat, Lng: r.Location.Lng}) >= MemoryRadiusKm {
			continue
		}
		days, err := daysAgo(today, r.CreatedAt)
		if err != nil || days <= 0 {
			continue
		}
		memories = append(memories, Memory{
			Record:  r,
			DaysAgo: days,
			Message: fmt.Sprintf("You left a record here %s", RecencyLabel(days)),
		})
	}

	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].DaysAgo < memories[j].DaysAgo
	})

	return memories
}

// RecencyLabel renders a day count as a human-readable recency tier.
// Weeks, months and years are floored at 7, 30 and 365 days.
func RecencyLabel(daysAgo int) string {
	switch {
	case daysAgo <= 0:
		return "today"
	case daysAgo == 1:
		return "yesterday"
	case daysAgo <= 7:
		return fmt.Sprintf("%d days ago", daysAgo)
	case daysAgo <= 30:
		return plural(daysAgo/7, "week")
	case daysAgo <= 365:
		return plural(daysAgo/30, "month")
	default:
		return plural(daysAgo/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// daysAgo is the whole calendar days between the record date and today.
func daysAgo(today time.Time, createdAt string) (int, error) {
	d, err := ParseDate(createdAt)
	if err != nil {
		return 0, err
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Sub(d).Hours() / 24), nil
}
