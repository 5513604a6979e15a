package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geojot/geojot/geo"
	"github.com/geojot/geojot/geocode"
	"github.com/geojot/geojot/journal"
)

// A DB provides a storage layer that persists records, comments and likes.
type DB interface {
	ListRecords(ctx context.Context, q RecordQuery) ([]journal.Record, error)
	InsertRecord(ctx context.Context, rec journal.Record) (journal.Record, error)
	InsertComment(ctx context.Context, c journal.Comment) (journal.Comment, error)
	ToggleLike(ctx context.Context, recordID, userID string) (liked bool, likes int, err error)
	ListLikedRecordIDs(ctx context.Context, userID string) ([]string, error)
	ListUsers(ctx context.Context) ([]journal.User, error)
	GetUser(ctx context.Context, userID string) (journal.User, error)
}

// A Cache provides a storage layer that caches the newest records and keeps
// the per-viewer memory-alert state.
type Cache interface {
	ListRecords(ctx context.Context) ([]journal.Record, error)
	InsertRecord(ctx context.Context, rec journal.Record) error
	InsertComment(ctx context.Context, recordID string, c journal.Comment) error
	UpdateLikes(ctx context.Context, recordID string, likes int) error
	LastMemoryCount(ctx context.Context, userID string) (int, error)
	SetLastMemoryCount(ctx context.Context, userID string, count int) error
}

// A Geocoder resolves coordinates to a display address. A nil Geocoder is
// valid; the API then falls back to formatted coordinates.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lng, lat float64) (string, error)
}

// API provides the REST endpoints for the application.
type API struct {
	Logger *slog.Logger
	DB     DB
	Cache  Cache
	Geo    Geocoder
	Val    *Validator

	once sync.Once
	mux  *http.ServeMux
}

// pageSize defines the default number of items displayed on a single page in pagination.
var pageSize = 10

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /records", a.listRecords)
	mux.HandleFunc("POST /records", a.createRecord)
	mux.HandleFunc("POST /records/{recordID}/comments", a.createComment)
	mux.HandleFunc("PUT /records/{recordID}/likes", a.toggleLike)
	mux.HandleFunc("GET /records/nearby", a.listMemories)
	mux.HandleFunc("GET /records/story", a.storyRecords)
	mux.HandleFunc("GET /records/summary", a.dailySummary)
	mux.HandleFunc("GET /records/explore", a.exploreRecords)
	mux.HandleFunc("GET /users", a.listUsers)
	mux.HandleFunc("GET /users/{userID}/stats", a.userStats)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.mux.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Error: msg})
}

func (a *API) validateBody(w http.ResponseWriter, s interface{}) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}

func (a *API) listRecords(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Records []journal.Record `json:"records"`
	}

	qs := r.URL.Query()
	q := RecordQuery{
		UserID: qs.Get("user_id"),
		Date:   qs.Get("date"),
	}
	if y := qs.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			a.respondError(w, http.StatusBadRequest, err, "Invalid year")
			return
		}
		q.Year = year
	}

	preds := make([]journal.Predicate, 0, 3)
	if tag := qs.Get("hashtag"); tag != "" {
		preds = append(preds, journal.HashtagContains(tag))
	}
	if author := qs.Get("author"); author != "" {
		preds = append(preds, journal.AuthorNameContains(author))
	}
	if memo := qs.Get("memo"); memo != "" {
		preds = append(preds, journal.MemoContains(memo))
	}

	// Text filters match against the whole set, so the page limit can only
	// be pushed down when none are active. With filters the full candidate
	// set is fetched and the cap applies after filtering.
	if len(preds) == 0 {
		q.Limit = pageSize
	}

	recs := make([]journal.Record, 0, pageSize)

	// The cache only holds the newest records with no constraints, so it is
	// consulted for the plain feed only.
	if q.UserID == "" && q.Date == "" && q.Year == 0 && len(preds) == 0 {
		cached, err := a.Cache.ListRecords(r.Context())
		if err != nil {
			a.respondError(w, http.StatusInternalServerError, err, "Could not list records")
			return
		}
		a.Logger.Info("Got records from cache", "count", len(cached))

		recs = append(recs, cached...)
		ids := make([]string, len(cached))
		for i, rec := range cached {
			ids[i] = rec.ID
		}
		q.ExcludeIDs = ids
	}

	dbRecs, err := a.DB.ListRecords(r.Context(), q)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list records")
		return
	}
	a.Logger.Info("Got remaining records from DB", "count", len(dbRecs))
	recs = append(recs, dbRecs...)

	recs = journal.Filter(recs, preds...)
	if len(recs) > pageSize {
		recs = recs[:pageSize]
	}

	if viewer := qs.Get("viewer_id"); viewer != "" {
		if err := a.markLiked(r.Context(), viewer, recs); err != nil {
			a.Logger.Error("Could not resolve likes for viewer", "error", err.Error())
		}
	}

	a.respond(w, http.StatusOK, response{Records: recs})
}

func (a *API) markLiked(ctx context.Context, viewerID string, recs []journal.Record) error {
	ids, err := a.DB.ListLikedRecordIDs(ctx, viewerID)
	if err != nil {
		return err
	}
	liked := make(map[string]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	for i := range recs {
		recs[i].IsLiked = liked[recs[i].ID]
	}
	return nil
}

func (a *API) createRecord(w http.ResponseWriter, r *http.Request) {
	type request struct {
		UserID    string       `json:"user_id" validate:"required"`
		Memo      string       `json:"memo" validate:"required"`
		Image     string       `json:"image" validate:"required"`
		Lat       float64      `json:"lat" validate:"min=-90,max=90"`
		Lng       float64      `json:"lng" validate:"min=-180,max=180"`
		Address   string       `json:"address"`
		Hashtags  []string     `json:"hashtags"`
		Mood      string       `json:"mood" validate:"omitempty,oneof=smile frown meh"`
		Icon      string       `json:"icon"`
		Time      string       `json:"time" validate:"omitempty,clock"`
		IsRunning bool         `json:"is_running"`
		Distance  float64      `json:"distance" validate:"min=0"`
		Duration  string       `json:"duration" validate:"omitempty,minsec"`
		Route     [][2]float64 `json:"route_coordinates"`
	}

	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	err = r.Body.Close()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not close request body")
		return
	}

	now := time.Now()
	if body.Time == "" {
		body.Time = now.Format("15:04")
	}
	if body.Hashtags == nil {
		body.Hashtags = []string{}
	}

	rec, err := a.DB.InsertRecord(r.Context(), journal.Record{
		UserID: body.UserID,
		Location: journal.Location{
			Lat:     body.Lat,
			Lng:     body.Lng,
			Address: a.resolveAddress(r.Context(), body.Address, body.Lat, body.Lng),
		},
		Image:     body.Image,
		Memo:      body.Memo,
		Hashtags:  body.Hashtags,
		CreatedAt: now.Format(journal.DateLayout),
		Time:      body.Time,
		Mood:      body.Mood,
		Icon:      body.Icon,
		IsRunning: body.IsRunning,
		Distance:  body.Distance,
		Duration:  body.Duration,
		Route:     body.Route,
	})
	if errors.Is(err, ErrUserNotFound) {
		a.respondError(w, http.StatusNotFound, err, "User not found")
		return
	}
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not create record")
		return
	}

	if err := a.Cache.InsertRecord(r.Context(), rec); err != nil {
		a.Logger.Error("Could not cache record", "error", err.Error())
	}

	a.respond(w, http.StatusCreated, rec)
}

// resolveAddress keeps the submitted address, asks the geocoder when there
// is none, and falls back to formatted coordinates when geocoding fails.
func (a *API) resolveAddress(ctx context.Context, address string, lat, lng float64) string {
	if address != "" {
		return address
	}
	if a.Geo != nil {
		resolved, err := a.Geo.ReverseGeocode(ctx, lng, lat)
		if err == nil {
			return resolved
		}
		a.Logger.Warn("Could not reverse geocode, using coordinates", "error", err.Error())
	}
	return geocode.FallbackAddress(lat, lng)
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	type request struct {
		UserID  string `json:"user_id" validate:"required"`
		Content string `json:"content" validate:"required"`
	}

	recordID := r.PathValue("recordID")
	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	err = r.Body.Close()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not close request body")
		return
	}

	comment, err := a.DB.InsertComment(r.Context(), journal.Comment{
		RecordID:  recordID,
		UserID:    body.UserID,
		Content:   body.Content,
		CreatedAt: time.Now().Format(journal.DateLayout),
	})
	if errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrUserNotFound) {
		a.respondError(w, http.StatusNotFound, err, fmt.Sprintf("could not comment on record with id %s", recordID))
		return
	}
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, fmt.Sprintf("could not comment on record with id %s", recordID))
		return
	}

	if err := a.Cache.InsertComment(r.Context(), recordID, comment); err != nil {
		a.Logger.Error("Could not cache comment", "error", err.Error())
	}

	a.respond(w, http.StatusCreated, comment)
}

func (a *API) toggleLike(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			UserID string `json:"user_id" validate:"required"`
		}
		response struct {
			RecordID string `json:"record_id"`
			UserID   string `json:"user_id"`
			IsLiked  bool   `json:"is_liked"`
			Likes    int    `json:"likes"`
		}
	)

	recordID := r.PathValue("recordID")
	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	liked, likes, err := a.DB.ToggleLike(r.Context(), recordID, body.UserID)
	if errors.Is(err, ErrRecordNotFound) {
		a.respondError(w, http.StatusNotFound, err, fmt.Sprintf("could not like record with id %s", recordID))
		return
	}
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, fmt.Sprintf("could not like record with id %s", recordID))
		return
	}

	// Keep the cached copy's counter in step with the derived count.
	if err := a.Cache.UpdateLikes(r.Context(), recordID, likes); err != nil {
		a.Logger.Error("Could not update cached like count", "error", err.Error())
	}

	a.respond(w, http.StatusOK, response{
		RecordID: recordID,
		UserID:   body.UserID,
		IsLiked:  liked,
		Likes:    likes,
	})
}

func (a *API) listMemories(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Memories []journal.Memory `json:"memories"`
		Alert    bool             `json:"alert"`
	}

	userID, at, ok := a.viewerPosition(w, r)
	if !ok {
		return
	}

	recs, err := a.DB.ListRecords(r.Context(), RecordQuery{UserID: userID})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list memories")
		return
	}

	memories := journal.MatchMemories(time.Now(), userID, at, recs)

	// The alert is edge-triggered: it fires once when the set of nearby
	// memories changes size, not on every poll from the same spot.
	alert := false
	prev, err := a.Cache.LastMemoryCount(r.Context(), userID)
	if err != nil {
		a.Logger.Error("Could not read memory alert state", "error", err.Error())
		prev = len(memories)
	}
	if len(memories) > 0 && len(memories) != prev {
		alert = true
		if err := a.Cache.SetLastMemoryCount(r.Context(), userID, len(memories)); err != nil {
			a.Logger.Error("Could not store memory alert state", "error", err.Error())
		}
	}

	a.respond(w, http.StatusOK, response{Memories: memories, Alert: alert})
}

func (a *API) storyRecords(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Date    string           `json:"date"`
		Records []journal.Record `json:"records"`
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		a.respondError(w, http.StatusBadRequest, errors.New("missing user_id"), "Missing user_id")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(journal.DateLayout)
	}

	recs, err := a.DB.ListRecords(r.Context(), RecordQuery{UserID: userID, Date: date})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list story records")
		return
	}

	a.respond(w, http.StatusOK, response{
		Date:    date,
		Records: journal.StoryOrder(date, userID, recs),
	})
}

func (a *API) dailySummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		a.respondError(w, http.StatusBadRequest, errors.New("missing user_id"), "Missing user_id")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(journal.DateLayout)
	}

	recs, err := a.DB.ListRecords(r.Context(), RecordQuery{UserID: userID, Date: date})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not summarize records")
		return
	}

	a.respond(w, http.StatusOK, journal.Summarize(date, userID, recs))
}

func (a *API) exploreRecords(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Records []journal.RankedRecord `json:"records"`
	}

	viewerID, at, ok := a.viewerPosition(w, r)
	if !ok {
		return
	}

	users, err := a.DB.ListUsers(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list records")
		return
	}
	friends := make(map[string]bool, len(users))
	for _, u := range users {
		if u.IsFriend {
			friends[u.ID] = true
		}
	}

	recs, err := a.DB.ListRecords(r.Context(), RecordQuery{})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list records")
		return
	}

	fromFriends := journal.Filter(recs, func(rec journal.Record) bool {
		return friends[rec.UserID] && rec.UserID != viewerID
	})

	a.respond(w, http.StatusOK, response{Records: journal.RankByDistance(at, fromFriends)})
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Users []journal.User `json:"users"`
	}

	users, err := a.DB.ListUsers(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list users")
		return
	}
	if users == nil {
		users = []journal.User{}
	}

	a.respond(w, http.StatusOK, response{Users: users})
}

func (a *API) userStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	if _, err := a.DB.GetUser(r.Context(), userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.respondError(w, http.StatusNotFound, err, fmt.Sprintf("no user with id %s", userID))
			return
		}
		a.respondError(w, http.StatusInternalServerError, err, "Could not load user")
		return
	}

	recs, err := a.DB.ListRecords(r.Context(), RecordQuery{UserID: userID})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not compute stats")
		return
	}

	a.respond(w, http.StatusOK, journal.Stats(time.Now(), recs))
}

// viewerPosition parses the user_id, lat and lng query parameters shared by
// the position-based endpoints.
func (a *API) viewerPosition(w http.ResponseWriter, r *http.Request) (string, geo.Point, bool) {
	qs := r.URL.Query()

	userID := qs.Get("user_id")
	if userID == "" {
		a.respondError(w, http.StatusBadRequest, errors.New("missing user_id"), "Missing user_id")
		return "", geo.Point{}, false
	}
	lat, err := strconv.ParseFloat(qs.Get("lat"), 64)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Invalid latitude")
		return "", geo.Point{}, false
	}
	lng, err := strconv.ParseFloat(qs.Get("lng"), 64)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Invalid longitude")
		return "", geo.Point{}, false
	}

	return userID, geo.Point{Lat: lat, Lng: lng}, true
}
