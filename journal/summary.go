package journal

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/geojot/geojot/geo"
)

// defaultMood is the bucket used when a record carries no mood.
const defaultMood = "smile"

// defaultCategory is the bucket used when a record carries no category icon.
const defaultCategory = "food"

// Summarize aggregates the viewer's records for one date into a daily
// summary. An empty input yields a zero summary, never an error.
func Summarize(date, viewerID string, records []Record) DailySummary {
	day := Filter(records, OwnerOnly(viewerID), DateEquals(date))

	sum := DailySummary{
		Date:          date,
		VisitedPlaces: len(day),
	}
	if len(day) == 0 {
		return sum
	}

	moods := make(map[string]int)
	tags := make(map[string]int)
	for _, r := range day {
		if r.IsRunning {
			sum.TotalDistance += r.Distance
			sum.TotalRunningMinutes += ParseDurationMinutes(r.Duration)
		}
		mood := r.Mood
		if mood == "" {
			mood = defaultMood
		}
		moods[mood]++
		for _, tag := range r.Hashtags {
			tags[tag]++
		}
	}

	// Guard the division: no running minutes means no average speed.
	if sum.TotalRunningMinutes > 0 {
		sum.AverageSpeedKmh = sum.TotalDistance / (sum.TotalRunningMinutes / 60)
	}

	sum.TopMood = topKey(moods)
	sum.TopHashtag = topKey(tags)

	return sum
}

// ParseDurationMinutes converts an MM:SS duration into fractional minutes.
// Malformed input counts as zero.
func ParseDurationMinutes(s string) float64 {
	mm, ss, ok := strings.Cut(s, ":")
	if !ok {
		return 0
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 {
		return 0
	}
	seconds, err := strconv.Atoi(ss)
	if err != nil || seconds < 0 {
		return 0
	}
	return float64(minutes) + float64(seconds)/60
}

// topKey returns the key with the highest count. Ties go to the
// lexicographically smaller key so the result is deterministic.
func topKey(counts map[string]int) string {
	var best string
	bestCount := 0
	for key, n := range counts {
		if n > bestCount || (n == bestCount && bestCount > 0 && key < best) {
			best = key
			bestCount = n
		}
	}
	return best
}

// RankByDistance annotates each record with its distance from the reference
// point and sorts ascending. The sort is stable: records at equal distance
// keep their input order.
func RankByDistance(at geo.Point, records []Record) []RankedRecord {
	ranked := make([]RankedRecord, len(records))
	for i, r := range records {
		ranked[i] = RankedRecord{
			Record:     r,
			DistanceKm: geo.DistanceKm(at, geo.Point{Lat: r.Location.Lat, Lng: r.Location.Lng}),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

// StoryOrder returns the viewer's records for one date in playback order:
// by time of day when both records carry one, otherwise by id.
func StoryOrder(date, viewerID string, records []Record) []Record {
	day := Filter(records, OwnerOnly(viewerID), DateEquals(date))
	sort.SliceStable(day, func(i, j int) bool {
		if day[i].Time != "" && day[j].Time != "" {
			return day[i].Time < day[j].Time
		}
		return day[i].ID < day[j].ID
	})
	return day
}

// Stats summarizes a user's whole journal: lifetime, today and
// calendar-month counts, per-category counts and the most visited area.
// The records are assumed to be the user's own.
func Stats(today time.Time, records []Record) ProfileStats {
	stats := ProfileStats{
		TotalRecords: len(records),
		Categories:   make([]CategoryCount, 0),
	}

	date := today.Format(DateLayout)
	month := today.Format("2006-01")
	categories := make(map[string]int)
	areas := make(map[string]int)
	for _, r := range records {
		if r.CreatedAt == date {
			stats.TodayRecords++
		}
		if strings.HasPrefix(r.CreatedAt, month) {
			stats.MonthRecords++
		}
		category := r.Icon
		if category == "" {
			category = defaultCategory
		}
		categories[category]++
		// The area is the leading token of the display address.
		if fields := strings.Fields(r.Location.Address); len(fields) > 0 {
			areas[fields[0]]++
		}
	}

	for category, n := range categories {
		stats.Categories = append(stats.Categories, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		if stats.Categories[i].Count != stats.Categories[j].Count {
			return stats.Categories[i].Count > stats.Categories[j].Count
		}
		return stats.Categories[i].Category < stats.Categories[j].Category
	})

	stats.TopArea = topKey(areas)

	return stats
}
