package web

// handlers_files.go serves the per-file widgets on each card. Every
// interaction changes the file's state and re-runs its pipeline; the
// response is the refreshed card.

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datasweeper/internal/chart"
	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/logging"
)

// update applies fn to the file's state and responds with the new view.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*core.FileState) error, message string) {
	view, err := s.service.UpdateFile(r.Context(), sessionFrom(r), chi.URLParam(r, "fileID"), fn, message)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.respondFile(w, r, view)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// handleToggleClean sets the "Clean data" checkbox.
func (s *Server) handleToggleClean(w http.ResponseWriter, r *http.Request) {
	form, err := s.decodeToggle(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.update(w, r, func(st *core.FileState) error {
		st.SetClean(form.On)
		return nil
	}, "Clean data "+onOff(form.On))
}

// handleTrigger returns a handler for one of the cleaning buttons.
func (s *Server) handleTrigger(action core.CleanAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.service.Trigger(r.Context(), sessionFrom(r), chi.URLParam(r, "fileID"), action)
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		s.respondFile(w, r, view)
	}
}

// handleSelectColumns sets the column projection. No "columns" field
// selects every column unless the picker marker says nothing was chosen.
func (s *Server) handleSelectColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := s.decodeColumns(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	var msg string
	switch {
	case cols == nil:
		msg = "All columns selected"
	case len(cols) == 0:
		msg = "No columns selected"
	default:
		msg = fmt.Sprintf("Columns selected: %s", strings.Join(cols, ", "))
	}
	s.update(w, r, func(st *core.FileState) error {
		st.SelectColumns(cols)
		return nil
	}, msg)
}

// handleToggleVisualize sets the "Show visualization" checkbox.
func (s *Server) handleToggleVisualize(w http.ResponseWriter, r *http.Request) {
	form, err := s.decodeToggle(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.update(w, r, func(st *core.FileState) error {
		st.SetVisualize(form.On)
		return nil
	}, "Visualization "+onOff(form.On))
}

// handleConvert picks the output format and makes the download available.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	choice, err := s.decodeConvert(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	format, _ := core.FormatFor(choice)
	s.update(w, r, func(st *core.FileState) error {
		return st.RequestConversion(choice)
	}, "Converted to "+format.Label)
}

// handleDownload sends the converted bytes as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Download(r.Context(), sessionFrom(r), chi.URLParam(r, "fileID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", d.MIME)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(d.Data); err != nil {
		logging.FromContext(r.Context()).Warn("download interrupted", "file", d.FileName, "error", err)
	}
}

// handleChart renders the file's bar chart as SVG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Chart(r.Context(), sessionFrom(r), chi.URLParam(r, "fileID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	var buf bytes.Buffer
	opts := chart.Options{Width: s.cfg.Chart.Width, Height: s.cfg.Chart.Height}
	if err := chart.BarSVG(&buf, data, opts); err != nil {
		respondError(w, r, fmt.Errorf("internal error drawing chart: %w", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleRemove drops the file from the session.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveFile(r.Context(), sessionFrom(r), chi.URLParam(r, "fileID")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	switch {
	case isHTMX(r):
		// An empty body swaps the card out.
		w.WriteHeader(http.StatusOK)
	case wantsJSON(r):
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
