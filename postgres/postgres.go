package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/geojot/geojot/api"
	"github.com/geojot/geojot/journal"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and ping the DB to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// ListRecords returns records matching the query, newest first. Records on
// the same date order by time of day, then by row creation.
func (pg *Postgres) ListRecords(ctx context.Context, q api.RecordQuery) ([]journal.Record, error) {
	var recs []record
	sel := pg.bun.NewSelect().
		Model(&recs).
		Relation("Comments", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("created_at ASC")
		}).
		Relation("LikedBy").
		Order("record_date DESC", "record_time DESC", "created_at DESC")

	if q.Limit > 0 {
		sel = sel.Limit(q.Limit).Offset(q.Offset)
	}
	if q.UserID != "" {
		sel = sel.Where("user_id = ?", q.UserID)
	}
	if q.Date != "" {
		sel = sel.Where("record_date = ?", q.Date)
	}
	if q.Year != 0 {
		sel = sel.Where("record_date >= ?", fmt.Sprintf("%04d-01-01", q.Year)).
			Where("record_date < ?", fmt.Sprintf("%04d-01-01", q.Year+1))
	}
	if len(q.ExcludeIDs) > 0 {
		sel = sel.Where("id NOT IN (?)", bun.In(q.ExcludeIDs))
	}

	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]journal.Record, len(recs))
	for i, m := range recs {
		out[i] = m.APIRecord()
	}

	return out, nil
}

// InsertRecord inserts a record into the database. The author display name
// is resolved from the users table so the projection cannot drift.
func (pg *Postgres) InsertRecord(ctx context.Context, rec journal.Record) (journal.Record, error) {
	name, err := pg.userName(ctx, rec.UserID)
	if err != nil {
		return journal.Record{}, err
	}

	m := &record{
		ID:         uuid.NewString(),
		UserID:     rec.UserID,
		UserName:   name,
		Lat:        rec.Location.Lat,
		Lng:        rec.Location.Lng,
		Address:    rec.Location.Address,
		Image:      rec.Image,
		Memo:       rec.Memo,
		Hashtags:   rec.Hashtags,
		Mood:       rec.Mood,
		Icon:       rec.Icon,
		RecordDate: rec.CreatedAt,
		RecordTime: rec.Time,
		IsRunning:  rec.IsRunning,
		Distance:   rec.Distance,
		Duration:   rec.Duration,
		Route:      rec.Route,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return journal.Record{}, fmt.Errorf("insert: %w", err)
	}
	return m.APIRecord(), nil
}

// InsertComment appends a comment to an existing record.
func (pg *Postgres) InsertComment(ctx context.Context, c journal.Comment) (journal.Comment, error) {
	if err := pg.recordExists(ctx, c.RecordID); err != nil {
		return journal.Comment{}, err
	}
	name, err := pg.userName(ctx, c.UserID)
	if err != nil {
		return journal.Comment{}, err
	}

	cm := &comment{
		ID:          uuid.NewString(),
		RecordID:    c.RecordID,
		UserID:      c.UserID,
		UserName:    name,
		Content:     c.Content,
		CommentDate: c.CreatedAt,
	}
	if _, err := pg.bun.NewInsert().Model(cm).Exec(ctx); err != nil {
		return journal.Comment{}, fmt.Errorf("insert: %w", err)
	}
	return cm.APIComment(), nil
}

// ToggleLike flips the viewer's like on a record and returns the new state
// together with the derived like count.
func (pg *Postgres) ToggleLike(ctx context.Context, recordID, userID string) (bool, int, error) {
	if err := pg.recordExists(ctx, recordID); err != nil {
		return false, 0, err
	}

	res, err := pg.bun.NewDelete().
		Model((*recordLike)(nil)).
		Where("record_id = ?", recordID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("delete like: %w", err)
	}

	liked := false
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		l := &recordLike{RecordID: recordID, UserID: userID}
		if _, err := pg.bun.NewInsert().Model(l).Exec(ctx); err != nil {
			return false, 0, fmt.Errorf("insert like: %w", err)
		}
		liked = true
	}

	count, err := pg.bun.NewSelect().
		Model((*recordLike)(nil)).
		Where("record_id = ?", recordID).
		Count(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}

	return liked, count, nil
}

// ListLikedRecordIDs returns the ids of every record the user has liked.
func (pg *Postgres) ListLikedRecordIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := pg.bun.NewSelect().
		Model((*recordLike)(nil)).
		Column("record_id").
		Where("user_id = ?", userID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return ids, nil
}

// ListUsers returns the full user reference table.
func (pg *Postgres) ListUsers(ctx context.Context) ([]journal.User, error) {
	var users []user
	if err := pg.bun.NewSelect().Model(&users).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]journal.User, len(users))
	for i, u := range users {
		out[i] = u.APIUser()
	}
	return out, nil
}

// GetUser returns one user, or api.ErrUserNotFound.
func (pg *Postgres) GetUser(ctx context.Context, userID string) (journal.User, error) {
	var u user
	err := pg.bun.NewSelect().Model(&u).Where("id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.User{}, api.ErrUserNotFound
	}
	if err != nil {
		return journal.User{}, fmt.Errorf("scan: %w", err)
	}
	return u.APIUser(), nil
}

func (pg *Postgres) userName(ctx context.Context, userID string) (string, error) {
	u, err := pg.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

func (pg *Postgres) recordExists(ctx context.Context, recordID string) error {
	exists, err := pg.bun.NewSelect().
		Model((*record)(nil)).
		Where("id = ?", recordID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if !exists {
		return api.ErrRecordNotFound
	}
	return nil
}
