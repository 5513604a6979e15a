package postgres

import (
	"time"

	"github.com/geojot/geojot/journal"
)

// A record represents a journal record in the database. The author display
// name is a projection of users.name resolved at insert time.
type record struct {
	ID         string       `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	UserID     string       `bun:",notnull"`
	UserName   string       `bun:",notnull"`
	Lat        float64      `bun:",notnull"`
	Lng        float64      `bun:",notnull"`
	Address    string       `bun:""`
	Image      string       `bun:",notnull"`
	Memo       string       `bun:",notnull"`
	Hashtags   []string     `bun:",array"`
	Mood       string       `bun:""`
	Icon       string       `bun:""`
	RecordDate string       `bun:"record_date,notnull"` // YYYY-MM-DD
	RecordTime string       `bun:"record_time"`         // HH:MM
	IsRunning  bool         `bun:"is_running"`
	Distance   float64      `bun:""`
	Duration   string       `bun:""`
	Route      [][2]float64 `bun:"route,type:jsonb"`
	CreatedAt  time.Time    `bun:",nullzero,default:now()"`
	Comments   []comment    `bun:"rel:has-many,join:id=record_id"`
	LikedBy    []recordLike `bun:"rel:has-many,join:id=record_id"`
}

type comment struct {
	ID          string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	RecordID    string    `bun:",notnull"`
	UserID      string    `bun:",notnull"`
	UserName    string    `bun:",notnull"`
	Content     string    `bun:",notnull"`
	CommentDate string    `bun:"comment_date,notnull"` // YYYY-MM-DD
	CreatedAt   time.Time `bun:",nullzero,default:now()"`
}

// A recordLike is one viewer's like of one record. The like counter and the
// viewer-relative is_liked flag are both derived from this table.
type recordLike struct {
	RecordID  string    `bun:",pk,notnull"`
	UserID    string    `bun:",pk,notnull"`
	CreatedAt time.Time `bun:",nullzero,default:now()"`
}

type user struct {
	ID         string `bun:",pk"`
	Name       string `bun:",notnull"`
	Age        int    `bun:""`
	Occupation string `bun:""`
	IsFriend   bool   `bun:"is_friend"`
}

func (m record) APIRecord() journal.Record {
	comments := make([]journal.Comment, len(m.Comments))
	for i, c := range m.Comments {
		comments[i] = c.APIComment()
	}
	hashtags := m.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}

	return journal.Record{
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
		Likes:     len(m.LikedBy),
		Comments:  comments,
		Mood:      m.Mood,
		Icon:      m.Icon,
		IsRunning: m.IsRunning,
		Distance:  m.Distance,
		Duration:  m.Duration,
		Route:     m.Route,
	}
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

func (u user) APIUser() journal.User {
	return journal.User{
		ID:         u.ID,
		Name:       u.Name,
		Age:        u.Age,
		Occupation: u.Occupation,
		IsFriend:   u.IsFriend,
	}
}
