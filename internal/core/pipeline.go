package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/datasweeper/internal/logging"
)

// DefaultPreviewRows is the number of rows shown in a file preview.
const DefaultPreviewRows = 5

// Pipeline runs the per-file sequence ingest, clean, project, visualize,
// export. It holds no per-file state; everything a run needs comes from the
// uploaded bytes and the FileState passed in.
type Pipeline struct {
	PreviewRows  int
	ChartMaxRows int
}

// NewPipeline returns a pipeline with the given preview size and chart row
// cap. Non-positive preview sizes fall back to DefaultPreviewRows.
func NewPipeline(previewRows, chartMaxRows int) *Pipeline {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	return &Pipeline{PreviewRows: previewRows, ChartMaxRows: chartMaxRows}
}

// Result is everything one run produced for one file.
type Result struct {
	FileID   string
	FileName string

	// Format is the detected input format. Zero when the extension is
	// unsupported.
	Format Format

	// Err is set when the file could not be ingested. No other field past
	// this one is populated in that case.
	Err error

	Preview *Table

	// Table is the final table after cleaning and projection.
	Table *Table

	// AvailableColumns are the columns after cleaning, offered for
	// projection. SelectedColumns is the projection actually applied.
	AvailableColumns []string
	SelectedColumns  []string

	// Notices are confirmations for the clean actions applied this run.
	Notices []string

	// Warnings are non-fatal problems, e.g. a chart that could not be drawn.
	Warnings []string

	Chart    *ChartData
	ChartErr error

	Download  *Download
	ExportErr error

	Duration time.Duration
}

// OK reports whether the file was ingested.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Unsupported reports whether the file was rejected for its extension.
func (r *Result) Unsupported() bool {
	return IsUnsupported(r.Err)
}

// Run processes one file with the given state. It never panics on bad
// input; every problem is reported on the Result.
func (p *Pipeline) Run(ctx context.Context, f UploadedFile, st FileState) *Result {
	start := time.Now()
	res := &Result{FileID: f.ID, FileName: f.Name}
	defer func() { res.Duration = time.Since(start) }()

	log := logging.WithFields(ctx, "file_id", f.ID, "file", f.Name)

	t, format, err := Ingest(f)
	res.Format = format
	if err != nil {
		res.Err = err
		if IsUnsupported(err) {
			log.Info("unsupported file skipped", "error", err)
		} else {
			log.Warn("file could not be parsed", "error", err)
		}
		return res
	}
	res.Preview = t.Head(p.PreviewRows)

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	if st.Clean {
		for _, a := range st.Actions {
			t, err = p.apply(ctx, t, a, res)
			if err != nil {
				res.Err = fmt.Errorf("%s: %w", a, err)
				return res
			}
		}
	}
	res.AvailableColumns = t.Columns()

	if st.Clean && st.Columns != nil {
		cols := make([]string, 0, len(st.Columns))
		for _, c := range st.Columns {
			if t.HasColumn(c) {
				cols = append(cols, c)
				continue
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("column %q is no longer present and was dropped from the selection", c))
		}
		projected, err := t.Project(cols)
		if err != nil {
			res.Err = err
			return res
		}
		t = projected
		res.SelectedColumns = cols
	} else {
		res.SelectedColumns = t.Columns()
	}
	res.Table = t

	if st.Visualize {
		chart, err := Visualize(t, p.ChartMaxRows)
		res.Chart, res.ChartErr = chart, err
		switch {
		case errors.Is(err, ErrInsufficientColumnsForChart):
			res.Warnings = append(res.Warnings, "Not enough numeric columns for visualization.")
		case errors.Is(err, ErrEmptyChart):
			res.Warnings = append(res.Warnings, "No rows to visualize.")
		case err != nil:
			res.Warnings = append(res.Warnings, err.Error())
		}
	}

	if st.Convert {
		if err := ctx.Err(); err != nil {
			res.ExportErr = err
			return res
		}
		res.Download, res.ExportErr = Export(t, st.Format, f.Name)
		if res.ExportErr != nil {
			log.Error("export failed", "format", st.Format, "error", res.ExportErr)
		}
	}

	log.Debug("pipeline run complete",
		"rows", t.Rows(),
		"columns", t.Width(),
		"actions", len(st.Actions),
		"converted", res.Download != nil,
	)
	return res
}

// apply runs one clean action and records its confirmation.
func (p *Pipeline) apply(ctx context.Context, t *Table, a CleanAction, res *Result) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch a {
	case ActionDedupe:
		out, removed, err := Deduplicate(t)
		if err != nil {
			return nil, err
		}
		res.Notices = append(res.Notices, fmt.Sprintf("Duplicates removed! (%d rows)", removed))
		return out, nil

	case ActionImpute:
		out, report, err := ImputeMean(t)
		if err != nil {
			return nil, err
		}
		res.Notices = append(res.Notices, fmt.Sprintf("Missing values filled! (%d cells)", report.Total()))
		if len(report.Skipped) > 0 {
			logging.FromContext(ctx).Debug("columns with no values to average left as is",
				"file_id", res.FileID,
				"columns", report.Skipped,
			)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown clean action: %q", a)
	}
}
