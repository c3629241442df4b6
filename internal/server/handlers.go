package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/export"
	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/geo"
	"github.com/claude/mapty/internal/importer"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Snapshot())
}

// geolocationRequest is what the page reports after asking the browser for
// its position. Error is set when the browser refused or failed.
type geolocationRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

// handleGeolocation starts the app with the page's position. A failed
// position still answers 200: the list is loaded and the state carries the
// geolocation error for the page to show.
func (s *Server) handleGeolocation(w http.ResponseWriter, r *http.Request) {
	var req geolocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var locator geo.Locator
	if req.Error != "" || req.Lat == nil || req.Lng == nil {
		locator = geo.Denied(req.Error)
	} else {
		locator = geo.Fixed(models.Coordinates{Lat: *req.Lat, Lng: *req.Lng})
	}

	err := s.app.Start(r.Context(), locator)
	if err != nil && !errors.Is(err, app.ErrGeolocationUnavailable) {
		s.log.Error("start failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.app.Snapshot())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.surface.Snapshot())
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var c models.Coordinates
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.surface.Click(c); err != nil {
		if errors.Is(err, mapview.ErrNotInitialized) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.app.Snapshot())
}

func (s *Server) handleFormType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	kind, err := models.ParseKind(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.app.ToggleType(kind)
	writeJSON(w, http.StatusOK, s.app.Snapshot().Form)
}

// rawNumber accepts a JSON number or string and keeps it as typed.
type rawNumber string

func (n *rawNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = rawNumber(s)
		return nil
	}
	if string(data) == "null" {
		*n = ""
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = rawNumber(f.String())
	return nil
}

// createWorkoutRequest is a form submission. Lat and Lng, when both set,
// record the workout there directly instead of at the clicked location.
type createWorkoutRequest struct {
	Type      string    `json:"type"`
	Distance  rawNumber `json:"distance"`
	Duration  rawNumber `json:"duration"`
	Cadence   rawNumber `json:"cadence"`
	Elevation rawNumber `json:"elevation"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
}

type createWorkoutResponse struct {
	Workout *models.Workout `json:"workout"`
	Row     template.HTML   `json:"row"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	kind := models.Kind(strings.ToLower(strings.TrimSpace(req.Type)))
	raw := form.RawFields{
		Distance:  string(req.Distance),
		Duration:  string(req.Duration),
		Cadence:   string(req.Cadence),
		Elevation: string(req.Elevation),
	}

	var (
		workout *models.Workout
		row     template.HTML
		err     error
	)
	if req.Lat != nil && req.Lng != nil {
		workout, row, err = s.app.Record(r.Context(), models.Coordinates{Lat: *req.Lat, Lng: *req.Lng}, kind, raw)
	} else {
		workout, row, err = s.app.Submit(r.Context(), kind, raw)
	}

	var invalid *form.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":   invalid.Error(),
			"field":   string(invalid.Field),
			"warning": invalid.Warning(),
		})
		return
	case errors.Is(err, app.ErrNoPendingLocation):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, app.ErrInvalidLocation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.log.Error("recording workout failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("workout created", "id", workout.ID, "type", workout.Kind, "user", userFromContext(r).Login)
	writeJSON(w, http.StatusCreated, createWorkoutResponse{Workout: workout, Row: row})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts := s.app.Workouts()

	if t := r.URL.Query().Get("type"); t != "" {
		kind, err := models.ParseKind(t)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		filtered := workouts[:0]
		for _, wo := range workouts {
			if wo.Kind == kind {
				filtered = append(filtered, wo)
			}
		}
		workouts = filtered
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid limit %q", l)})
			return
		}
		if n < len(workouts) {
			workouts = workouts[len(workouts)-n:]
		}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.app.Rows()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rows))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.app.Get(chi.URLParam(r, "id"))
	if errors.Is(err, app.ErrWorkoutNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleFocusWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.app.Focus(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, app.ErrWorkoutNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	case errors.Is(err, mapview.ErrNotInitialized):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// handleReset clears every workout. The page reloads afterwards.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Reset(r.Context()); err != nil {
		s.log.Error("reset failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.log.Warn("all workouts cleared", "user", userFromContext(r).Login)
	writeJSON(w, http.StatusOK, map[string]bool{"reload": true})
}

// maxImportBytes caps an uploaded backup or track.
const maxImportBytes = 32 << 20

// handleImport adds workouts from a JSON backup or a GPX track in the body.
// GPX uploads take type and cadence from the query.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = "json"
		if strings.Contains(r.Header.Get("Content-Type"), "gpx") {
			format = "gpx"
		}
	}

	var opts importer.TrackOptions
	if t := q.Get("type"); t != "" {
		kind, err := models.ParseKind(t)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		opts.Kind = kind
	}
	if c := q.Get("cadence"); c != "" {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid cadence %q", c)})
			return
		}
		opts.Cadence = v
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}
	workouts, err := importer.Parse("upload."+format, data, opts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	imp := importer.New(s.app, s.log, false, opts)
	if err := imp.Add(r.Context(), workouts); err != nil {
		s.log.Error("import failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	stats := imp.Stats()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	if err := export.Write(w, format, s.app.Workouts()); err != nil {
		s.log.Error("export failed", "format", format, "error", err)
	}
}

// writeJSON encodes v before writing the header so an encoding failure
// still turns into a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
