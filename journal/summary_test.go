package journal

import (
	"testing"
	"time"

	"github.com/geojot/geojot/geo"
	"github.com/google/go-cmp/cmp"
)

func TestSummarize_empty(t *testing.T) {
	got := Summarize("2024-06-15", "1", nil)

	want := DailySummary{Date: "2024-06-15"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_averageSpeed(t *testing.T) {
	records := []Record{
		{UserID: "1", CreatedAt: "2024-06-15", IsRunning: true, Distance: 5.0, Duration: "30:00"},
	}

	got := Summarize("2024-06-15", "1", records)

	if got.TotalDistance != 5.0 {
		t.Errorf("TotalDistance = %v, want 5.0", got.TotalDistance)
	}
	if got.TotalRunningMinutes != 30.0 {
		t.Errorf("TotalRunningMinutes = %v, want 30.0", got.TotalRunningMinutes)
	}
	if got.AverageSpeedKmh != 10.0 {
		t.Errorf("AverageSpeedKmh = %v, want 10.0", got.AverageSpeedKmh)
	}
}

func TestSummarize_noRunningMeansNoSpeed(t *testing.T) {
	records := []Record{
		{UserID: "1", CreatedAt: "2024-06-15", Mood: "meh"},
	}

	got := Summarize("2024-06-15", "1", records)
	if got.AverageSpeedKmh != 0 {
		t.Errorf("AverageSpeedKmh = %v, want 0 without running minutes", got.AverageSpeedKmh)
	}
	if got.VisitedPlaces != 1 {
		t.Errorf("VisitedPlaces = %d, want 1", got.VisitedPlaces)
	}
}

func TestSummarize_topMoodDefaultsToSmile(t *testing.T) {
	records := []Record{
		{UserID: "1", CreatedAt: "2024-06-15"},
		{UserID: "1", CreatedAt: "2024-06-15"},
		{UserID: "1", CreatedAt: "2024-06-15", Mood: "frown"},
	}

	got := Summarize("2024-06-15", "1", records)
	if got.TopMood != "smile" {
		t.Errorf("TopMood = %q, want smile (absent moods bucket as smile)", got.TopMood)
	}
}

func TestSummarize_topHashtagTieBreaksLexicographically(t *testing.T) {
	records := []Record{
		{UserID: "1", CreatedAt: "2024-06-15", Hashtags: []string{"walk"}},
		{UserID: "1", CreatedAt: "2024-06-15", Hashtags: []string{"cafe"}},
	}

	got := Summarize("2024-06-15", "1", records)
	if got.TopHashtag != "cafe" {
		t.Errorf("TopHashtag = %q, want cafe on a tie", got.TopHashtag)
	}
}

func TestSummarize_filtersViewerAndDate(t *testing.T) {
	records := []Record{
		{UserID: "1", CreatedAt: "2024-06-15"},
		{UserID: "2", CreatedAt: "2024-06-15"},
		{UserID: "1", CreatedAt: "2024-06-14"},
	}

	got := Summarize("2024-06-15", "1", records)
	if got.VisitedPlaces != 1 {
		t.Errorf("VisitedPlaces = %d, want 1", got.VisitedPlaces)
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30:00", 30},
		{"05:30", 5.5},
		{"00:45", 0.75},
		{"", 0},
		{"garbage", 0},
		{"-1:30", 0},
	}
	for _, tt := range tests {
		if got := ParseDurationMinutes(tt.in); got != tt.want {
			t.Errorf("ParseDurationMinutes(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRankByDistance_stable(t *testing.T) {
	at := geo.Point{Lat: 37.5665, Lng: 126.9780}
	samePlace := Location{Lat: 37.5700, Lng: 126.9780}
	records := []Record{
		{ID: "first", Location: samePlace},
		{ID: "second", Location: samePlace},
		{ID: "closest", Location: Location{Lat: 37.5666, Lng: 126.9780}},
	}

	got := RankByDistance(at, records)

	wantOrder := []string{"closest", "first", "second"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("ranked[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
	if got[0].DistanceKm <= 0 {
		t.Errorf("DistanceKm = %v, want > 0", got[0].DistanceKm)
	}
}

func TestStoryOrder(t *testing.T) {
	records := []Record{
		{ID: "b", UserID: "1", CreatedAt: "2024-06-15", Time: "18:00"},
		{ID: "a", UserID: "1", CreatedAt: "2024-06-15", Time: "09:30"},
		{ID: "c", UserID: "1", CreatedAt: "2024-06-15"},
		{ID: "d", UserID: "2", CreatedAt: "2024-06-15", Time: "07:00"},
		{ID: "e", UserID: "1", CreatedAt: "2024-06-14", Time: "07:00"},
	}

	got := StoryOrder("2024-06-15", "1", records)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	// "c" has no time, so its pairings fall back to id ordering.
	want := []string{"a", "b", "c"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("Story order mismatch (-want +got):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	records := []Record{
		{CreatedAt: "2024-06-15", Icon: "cafe", Location: Location{Address: "Seongsu Seoul"}},
		{CreatedAt: "2024-06-10", Icon: "cafe", Location: Location{Address: "Seongsu Seoul"}},
		{CreatedAt: "2024-06-01", Location: Location{Address: "Hongdae Seoul"}},
		{CreatedAt: "2023-12-25", Icon: "travel", Location: Location{Address: "Busan Haeundae"}},
	}

	got := Stats(now, records)

	if got.TotalRecords != 4 {
		t.Errorf("TotalRecords = %d, want 4", got.TotalRecords)
	}
	if got.TodayRecords != 1 {
		t.Errorf("TodayRecords = %d, want 1", got.TodayRecords)
	}
	if got.MonthRecords != 3 {
		t.Errorf("MonthRecords = %d, want 3", got.MonthRecords)
	}
	wantCategories := []CategoryCount{
		{Category: "cafe", Count: 2},
		{Category: "food", Count: 1}, // icon-less records bucket as food
		{Category: "travel", Count: 1},
	}
	if diff := cmp.Diff(wantCategories, got.Categories); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
	if got.TopArea != "Seongsu" {
		t.Errorf("TopArea = %q, want Seongsu", got.TopArea)
	}
}
