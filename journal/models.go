// Package journal holds the record domain model and the pure filtering,
// proximity-memory, and aggregation logic over it. Nothing here performs
// I/O; every function is safe to call concurrently.
package journal

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used by Record.CreatedAt and
// Comment.CreatedAt. Dates are compared as strings.
const DateLayout = "2006-01-02"

// A Location is a geotagged point with a display address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// A Comment belongs to exactly one record and is append-only.
type Comment struct {
	ID        string `json:"id"`
	RecordID  string `json:"record_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// A Record is a single geotagged journal entry. Records are immutable once
// created except for likes and comments.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Location  Location  `json:"location"`
	Image     string    `json:"image"`
	Memo      string    `json:"memo"`
	Hashtags  []string  `json:"hashtags"`
	CreatedAt string    `json:"created_at"`     // YYYY-MM-DD
	Time      string    `json:"time,omitempty"` // HH:MM, used for same-day ordering
	Likes     int       `json:"likes"`
	Comments  []Comment `json:"comments"`
	IsLiked   bool      `json:"is_liked"`
	Mood      string    `json:"mood,omitempty"` // smile, frown or meh
	Icon      string    `json:"icon,omitempty"` // open-ended category tag

	// Running records additionally carry a route.
	IsRunning bool         `json:"is_running,omitempty"`
	Distance  float64      `json:"distance,omitempty"` // km
	Duration  string       `json:"duration,omitempty"` // MM:SS
	Route     [][2]float64 `json:"route_coordinates,omitempty"` // [lng, lat] pairs
}

// A User is static reference data for record authors.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Occupation string `json:"occupation"`
	IsFriend   bool   `json:"is_friend"`
}

// A Memory is a past record surfaced because the viewer is near its
// location again.
type Memory struct {
	Record  Record `json:"record"`
	DaysAgo int    `json:"days_ago"`
	Message string `json:"message"`
}

// A DailySummary aggregates one viewer's records for a single date.
type DailySummary struct {
	Date                string  `json:"date"`
	VisitedPlaces       int     `json:"visited_places"`
	TotalDistance       float64 `json:"total_distance"`
	TotalRunningMinutes float64 `json:"total_running_minutes"`
	AverageSpeedKmh     float64 `json:"average_speed_kmh"`
	TopMood             string  `json:"top_mood,omitempty"`
	TopHashtag          string  `json:"top_hashtag,omitempty"`
}

// A CategoryCount is one bucket of the per-category profile statistics.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ProfileStats summarizes a user's whole journal.
type ProfileStats struct {
	TotalRecords int             `json:"total_records"`
	TodayRecords int             `json:"today_records"`
	MonthRecords int             `json:"month_records"`
	Categories   []CategoryCount `json:"categories"`
	TopArea      string          `json:"top_area,omitempty"`
}

// A RankedRecord pairs a record with its distance from a reference point.
type RankedRecord struct {
	Record
	DistanceKm float64 `json:"distance_km"`
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}
