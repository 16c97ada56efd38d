package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/JonMunkholm/datasweeper/internal/web/templates"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// handleDashboard renders the upload form and every file in the session.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(r)

	views, err := s.service.Files(ctx, sess)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(s.dashboardData(views)).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render dashboard", "error", err)
	}
}

func (s *Server) dashboardData(views []core.FileView) templates.DashboardData {
	return templates.DashboardData{
		Files:    views,
		Accept:   core.AcceptedExtensions(),
		MaxFiles: s.cfg.Upload.MaxFiles,
	}
}

// handleUpload adds the multipart "files" to the session and processes
// them. Files with an unsupported extension are accepted and shown with an
// inline error.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooBig.Limit)
		} else {
			err = fmt.Errorf("%w: %v", errInvalidForm, err)
		}
		respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, r, core.ErrNoFiles, http.StatusBadRequest)
		return
	}

	files := make([]core.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > s.cfg.Upload.MaxFileSize {
			err := fmt.Errorf("%w: %s is %d bytes, limit is %d", core.ErrFileTooLarge, fh.Filename, fh.Size, s.cfg.Upload.MaxFileSize)
			respondError(w, r, err, http.StatusRequestEntityTooLarge)
			return
		}
		data, err := readPart(fh)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errInvalidForm, err), http.StatusBadRequest)
			return
		}
		files = append(files, core.UploadedFile{Name: filepath.Base(fh.Filename), Data: data})
	}

	views, err := s.service.AddFiles(ctx, sess, files)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Dashboard(s.dashboardData(views)).Render(ctx, w)
	case wantsJSON(r):
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, summarize(views))
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}

// respondFile answers a widget interaction: the refreshed card for HTMX,
// the file summary for JSON clients, and a redirect back to the card
// otherwise.
func (s *Server) respondFile(w http.ResponseWriter, r *http.Request, view core.FileView) {
	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.FileCard(view).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render file card", "error", err, "file_id", view.ID)
		}
	case wantsJSON(r):
		render.JSON(w, r, summarizeFile(view))
	default:
		http.Redirect(w, r, "/#"+templates.FileCardID(view.ID), http.StatusSeeOther)
	}
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status   string                `json:"status"`
	Sessions int                   `json:"sessions"`
	Runs     core.RunLimiterStatus `json:"runs"`
}

// handleHealth reports liveness and current load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:   "ok",
		Sessions: s.service.SessionCount(),
		Runs:     s.service.LimiterStatus(),
	})
}
