package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// fileSummary is the JSON view of a processed file.
type fileSummary struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Size   int64          `json:"size"`
	Format string         `json:"format,omitempty"`
	State  core.FileState `json:"state"`

	Error *core.UserMessage `json:"error,omitempty"`

	Rows             int        `json:"rows"`
	Columns          []string   `json:"columns"`
	AvailableColumns []string   `json:"available_columns"`
	Preview          [][]string `json:"preview,omitempty"`
	Notices          []string   `json:"notices,omitempty"`
	Warnings         []string   `json:"warnings,omitempty"`

	Chart    *core.ChartData `json:"chart,omitempty"`
	Download *downloadInfo   `json:"download,omitempty"`

	History    []core.HistoryEntry `json:"history"`
	DurationMS int64               `json:"duration_ms"`
}

type downloadInfo struct {
	FileName string `json:"file_name"`
	MIME     string `json:"mime"`
	Size     int    `json:"size"`
	URL      string `json:"url"`
}

func summarizeFile(v core.FileView) fileSummary {
	out := fileSummary{
		ID:      v.ID,
		Name:    v.Name,
		Size:    v.Size,
		State:   v.State,
		History: v.History,
	}
	res := v.Result
	if res == nil {
		return out
	}
	out.Format = string(res.Format.Choice)
	out.DurationMS = res.Duration.Milliseconds()
	if res.Err != nil {
		msg := core.MapError(res.Err)
		out.Error = &msg
		return out
	}

	if res.Table != nil {
		out.Rows = res.Table.Rows()
	}
	out.Columns = res.SelectedColumns
	out.AvailableColumns = res.AvailableColumns
	if res.Preview != nil {
		out.Preview = res.Preview.Records()
	}
	out.Notices = res.Notices
	out.Warnings = res.Warnings
	if v.State.Visualize {
		out.Chart = res.Chart
	}
	if v.State.Convert && res.Download != nil {
		out.Download = &downloadInfo{
			FileName: res.Download.FileName,
			MIME:     res.Download.MIME,
			Size:     len(res.Download.Data),
			URL:      "/files/" + v.ID + "/download",
		}
	}
	return out
}

func summarize(views []core.FileView) []fileSummary {
	out := make([]fileSummary, len(views))
	for i, v := range views {
		out[i] = summarizeFile(v)
	}
	return out
}

// handleAPIListFiles returns every file in the session.
func (s *Server) handleAPIListFiles(w http.ResponseWriter, r *http.Request) {
	views, err := s.service.Files(r.Context(), sessionFrom(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	render.JSON(w, r, summarize(views))
}

// handleAPIFile returns one processed file.
func (s *Server) handleAPIFile(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.File(r.Context(), sessionFrom(r), chi.URLParam(r, "fileID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	render.JSON(w, r, summarizeFile(view))
}
