package redis

import (
	"encoding/json"
	"strings"

	"github.com/geojot/geojot/journal"
)

// A record is the flattened hash representation of a cached record.
// Hashtags are comma-joined and the route is embedded as JSON, since Redis
// hashes only hold scalar fields.
type record struct {
	ID         string  `redis:"id"`
	UserID     string  `redis:"user_id"`
	UserName   string  `redis:"user_name"`
	Lat        float64 `redis:"lat"`
	Lng        float64 `redis:"lng"`
	Address    string  `redis:"address"`
	Image      string  `redis:"image"`
	Memo       string  `redis:"memo"`
	Hashtags   string  `redis:"hashtags"`
	Mood       string  `redis:"mood"`
	Icon       string  `redis:"icon"`
	RecordDate string  `redis:"record_date"`
	RecordTime string  `redis:"record_time"`
	Likes      int     `redis:"likes"`
	IsRunning  bool    `redis:"is_running"`
	Distance   float64 `redis:"distance"`
	Duration   string  `redis:"duration"`
	Route      string  `redis:"route"`
	Comments   []comment
}

// comment represents a cached record comment.
type comment struct {
	ID          string `redis:"id"`
	RecordID    string `redis:"record_id"`
	UserID      string `redis:"user_id"`
	UserName    string `redis:"user_name"`
	Content     string `redis:"content"`
	CommentDate string `redis:"comment_date"`
}

func newCacheRecord(r journal.Record) *record {
	route := ""
	if len(r.Route) > 0 {
		if b, err := json.Marshal(r.Route); err == nil {
			route = string(b)
		}
	}
	return &record{
		ID:         r.ID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		Lat:        r.Location.Lat,
		Lng:        r.Location.Lng,
		Address:    r.Location.Address,
		Image:      r.Image,
		Memo:       r.Memo,
		Hashtags:   strings.Join(r.Hashtags, ","),
		Mood:       r.Mood,
		Icon:       r.Icon,
		RecordDate: r.CreatedAt,
		RecordTime: r.Time,
		Likes:      r.Likes,
		IsRunning:  r.IsRunning,
		Distance:   r.Distance,
		Duration:   r.Duration,
		Route:      route,
	}
}

func (m record) APIRecord() journal.Record {
	hashtags := []string{}
	if m.Hashtags != "" {
		hashtags = strings.Split(m.Hashtags, ",")
	}
	var route [][2]float64
	if m.Route != "" {
		_ = json.Unmarshal([]byte(m.Route), &route)
	}

	rec := journal.Record{
		ID:       m.ID,
		UserID:   m.UserID,
		UserName: m.UserName,
		Location: journal.Location{
			Lat:     m.Lat,
			Lng:     m.Lng,
			Address: m.Address,
		},
		Image:     m.Image,
		Memo:      m.Memo,
		Hashtags:  hashtags,
		CreatedAt: m.RecordDate,
		Time:      m.RecordTime,
		Likes:     m.Likes,
		Comments:  make([]journal.Comment, len(m.Comments)),
		Mood:      m.Mood,
		Icon:      m.Icon,
		IsRunning: m.IsRunning,
		Distance:  m.Distance,
		Duration:  m.Duration,
		Route:     route,
	}

	for i, c := range m.Comments {
		rec.Comments[i] = c.APIComment()
	}

	return rec
}

func (c comment) APIComment() journal.Comment {
	return journal.Comment{
		ID:        c.ID,
		RecordID:  c.RecordID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		Content:   c.Content,
		CreatedAt: c.CommentDate,
	}
}
