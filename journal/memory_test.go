package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/geojot/geojot/geo"
)

var (
	cityHall = geo.Point{Lat: 37.5665, Lng: 126.9780}
	today    = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
)

// recordAt builds one of the viewer's records at the given offset from the
// reference point, dated the given number of days before today.
func recordAt(id string, latOffset float64, daysBefore int) Record {
	return Record{
		ID:        id,
		UserID:    "1",
		CreatedAt: today.AddDate(0, 0, -daysBefore).Format(DateLayout),
		Location:  Location{Lat: cityHall.Lat + latOffset, Lng: cityHall.Lng},
	}
}

func TestMatchMemories_excludesToday(t *testing.T) {
	records := []Record{recordAt("today", 0, 0)}

	got := MatchMemories(today, "1", cityHall, records)
	if len(got) != 0 {
		t.Errorf("Got %d memories, want 0: a same-day record must not resurface", len(got))
	}
}

func TestMatchMemories_excludesOtherUsers(t *testing.T) {
	other := recordAt("other", 0, 3)
	other.UserID = "2"

	got := MatchMemories(today, "1", cityHall, []Record{other})
	if len(got) != 0 {
		t.Errorf("Got %d memories, want 0: only the viewer's records count", len(got))
	}
}

func TestMatchMemories_radius(t *testing.T) {
	records := []Record{
		recordAt("near", 0.0005, 3), // ~55m
		recordAt("far", 0.002, 3),   // ~220m
	}

	got := MatchMemories(today, "1", cityHall, records)
	if len(got) != 1 || got[0].Record.ID != "near" {
		t.Fatalf("Got %v, want only the record within 100m", got)
	}
}

func TestMatchMemories_sortedMostRecentFirst(t *testing.T) {
	records := []Record{
		recordAt("old", 0, 40),
		recordAt("recent", 0, 2),
		recordAt("middle", 0, 10),
	}

	got := MatchMemories(today, "1", cityHall, records)
	if len(got) != 3 {
		t.Fatalf("Got %d memories, want 3", len(got))
	}
	wantOrder := []string{"recent", "middle", "old"}
	for i, want := range wantOrder {
		if got[i].Record.ID != want {
			t.Errorf("memories[%d] = %s, want %s", i, got[i].Record.ID, want)
		}
	}
}

func TestMatchMemories_messages(t *testing.T) {
	tests := []struct {
		daysBefore int
		want       string
	}{
		{1, "yesterday"},
		{3, "3 days ago"},
		{10, "1 week ago"},
		{40, "1 month ago"},
		{400, "1 year ago"},
	}
	for _, tt := range tests {
		got := MatchMemories(today, "1", cityHall, []Record{recordAt("r", 0, tt.daysBefore)})
		if len(got) != 1 {
			t.Fatalf("daysBefore=%d: got %d memories, want 1", tt.daysBefore, len(got))
		}
		if !strings.Contains(got[0].Message, tt.want) {
			t.Errorf("daysBefore=%d: message %q does not contain %q", tt.daysBefore, got[0].Message, tt.want)
		}
		if got[0].DaysAgo != tt.daysBefore {
			t.Errorf("daysBefore=%d: DaysAgo = %d", tt.daysBefore, got[0].DaysAgo)
		}
	}
}

func TestMatchMemories_skipsMalformedDates(t *testing.T) {
	r := recordAt("bad", 0, 3)
	r.CreatedAt = "June 12th"

	got := MatchMemories(today, "1", cityHall, []Record{r})
	if len(got) != 0 {
		t.Errorf("Got %d memories, want 0 for a malformed date", len(got))
	}
}

func TestRecencyLabel_tiers(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "today"},
		{1, "yesterday"},
		{2, "2 days ago"},
		{7, "7 days ago"},
		{8, "1 week ago"},
		{21, "3 weeks ago"},
		{30, "4 weeks ago"},
		{31, "1 month ago"},
		{365, "12 months ago"},
		{366, "1 year ago"},
		{800, "2 years ago"},
	}
	for _, tt := range tests {
		if got := RecencyLabel(tt.days); got != tt.want {
			t.Errorf("RecencyLabel(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
