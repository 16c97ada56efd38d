package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// DashboardData is everything the main page shows.
type DashboardData struct {
	Files    []core.FileView
	Accept   string // input accept attribute, e.g. ".csv,.xlsx"
	MaxFiles int
	Flash    *core.UserMessage
}

// AllProcessed reports whether every file in the session was ingested.
func (d DashboardData) AllProcessed() bool {
	if len(d.Files) == 0 {
		return false
	}
	for _, f := range d.Files {
		if f.Result == nil || f.Result.Err != nil {
			return false
		}
	}
	return true
}

// Dashboard renders the upload form followed by a card per file.
func Dashboard(d DashboardData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(ctx, w)
		p.raw(`<h1>Data Sweeper</h1>`)
		p.raw(`<p class="muted">Convert between CSV and Excel, clean your data and take a quick look at it.</p>`)

		if d.Flash != nil {
			p.component(ErrorAlert(d.Flash.Message, d.Flash.Action, d.Flash.Code))
		}

		p.raw(`<form method="post" action="/upload" enctype="multipart/form-data" class="card">`)
		p.raw(`<label>Upload your files (CSV or Excel)<br>`)
		p.rawf(`<input type="file" name="files" multiple accept="%s" required></label> `, esc(d.Accept))
		p.raw(`<button type="submit">Upload</button>`)
		if d.MaxFiles > 0 {
			p.rawf(`<div class="muted">Up to %d files per session.</div>`, d.MaxFiles)
		}
		p.raw(`</form>`)

		for _, f := range d.Files {
			p.component(FileCard(f))
		}

		if d.AllProcessed() {
			p.component(SuccessBanner("All files processed successfully!"))
		}
		return p.err
	})
	return Layout("Data Sweeper", body)
}
