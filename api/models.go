package api

import "errors"

// Sentinel errors reported by storage implementations so handlers can map
// them to HTTP statuses.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserNotFound   = errors.New("user not found")
)

// A RecordQuery narrows a record listing. Zero values mean "no constraint";
// a Limit of zero lists everything.
type RecordQuery struct {
	Limit      int
	Offset     int
	UserID     string // exact author match
	Date       string // exact YYYY-MM-DD match
	Year       int
	ExcludeIDs []string
}
