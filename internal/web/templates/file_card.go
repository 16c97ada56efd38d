package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// FileCardID is the element id of a file's card, used as an HTMX target and
// a redirect anchor.
func FileCardID(fileID string) string {
	return "file-" + fileID
}

// FileCard renders one uploaded file: its preview, cleaning controls,
// column choice, chart, conversion and download.
func FileCard(v core.FileView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(ctx, w)
		base := "/files/" + esc(v.ID)

		p.rawf(`<section class="card" id="%s">`, esc(FileCardID(v.ID)))
		p.raw(`<header><h3>`)
		p.text(v.Name)
		p.rawf(`</h3><span class="muted">%s</span></header>`, esc(HumanSize(v.Size)))

		res := v.Result
		if res == nil {
			p.raw(`</section>`)
			return p.err
		}
		if res.Err != nil {
			msg := core.MapError(res.Err)
			p.component(ErrorAlert(msg.Message, msg.Action, msg.Code))
			removeButton(p, base)
			p.raw(`</section>`)
			return p.err
		}

		p.raw(`<h4>Preview</h4>`)
		p.component(DataTable(res.Preview))

		// Cleaning
		p.raw(`<fieldset><legend>Data cleaning</legend>`)
		toggle(p, base+"/clean", "Clean data", v.State.Clean)
		if v.State.Clean {
			p.rawf(`<form class="inline" method="post" action="%s/dedupe"><button type="submit">Remove duplicates</button></form>`, base)
			p.rawf(`<form class="inline" method="post" action="%s/impute"><button type="submit">Fill missing values</button></form>`, base)
			for _, n := range res.Notices {
				p.component(SuccessBanner(n))
			}
			columnPicker(p, base, res.AvailableColumns, res.SelectedColumns)
		}
		p.raw(`</fieldset>`)

		// Visualization
		p.raw(`<fieldset><legend>Visualization</legend>`)
		toggle(p, base+"/visualize", "Show visualization", v.State.Visualize)
		if v.State.Visualize && res.Chart != nil {
			p.rawf(`<div class="chart"><img src="%s/chart.svg?v=%d" alt="Bar chart of %s"></div>`,
				base, len(v.History), esc(v.Name))
			if res.Chart.Truncated {
				p.rawf(`<p class="muted">Showing the first %d of %d rows.</p>`,
					len(res.Chart.Labels), res.Chart.TotalRows)
			}
		}
		for _, warn := range res.Warnings {
			p.component(Warning(warn))
		}
		p.raw(`</fieldset>`)

		// Conversion
		p.raw(`<fieldset><legend>Conversion options</legend>`)
		p.rawf(`<form method="post" action="%s/convert">`, base)
		for _, f := range core.Formats() {
			checked := ""
			if f.Choice == v.State.Format {
				checked = " checked"
			}
			p.rawf(`<label><input type="radio" name="format" value="%s"%s> %s</label> `,
				esc(string(f.Choice)), checked, esc(f.Label))
		}
		p.raw(`<button type="submit">Convert</button></form>`)
		if res.ExportErr != nil {
			msg := core.MapError(res.ExportErr)
			p.component(ErrorAlert(msg.Message, msg.Action, msg.Code))
		}
		if v.State.Convert && res.Download != nil {
			p.rawf(`<p><a href="%s/download" download="%s">Download %s</a></p>`,
				base, esc(res.Download.FileName), esc(res.Download.FileName))
		}
		p.raw(`</fieldset>`)

		if len(v.History) > 0 {
			p.raw(`<details><summary class="muted">History</summary><ul class="history">`)
			for _, h := range v.History {
				p.rawf(`<li>%s %s</li>`, esc(h.At.Format("15:04:05")), esc(h.Message))
			}
			p.raw(`</ul></details>`)
		}

		removeButton(p, base)
		p.raw(`</section>`)
		return p.err
	})
}

// toggle renders a checkbox that posts its state as soon as it changes.
func toggle(p *printer, action, label string, on bool) {
	checked := ""
	if on {
		checked = " checked"
	}
	p.rawf(`<form method="post" action="%s"><label>`, action)
	p.rawf(`<input type="checkbox" name="on" value="true" onchange="this.form.submit()"%s> %s`, checked, esc(label))
	p.raw(`</label><noscript><button type="submit" class="secondary">Apply</button></noscript></form>`)
}

func columnPicker(p *printer, base string, available, selected []string) {
	sel := make(map[string]bool, len(selected))
	for _, c := range selected {
		sel[c] = true
	}
	p.rawf(`<form method="post" action="%s/columns">`, base)
	p.raw(`<input type="hidden" name="columns_submitted" value="1">`)
	p.raw(`<label>Select columns to keep<br>`)
	p.raw(`<select name="columns" multiple size="6">`)
	for _, c := range available {
		selAttr := ""
		if sel[c] {
			selAttr = " selected"
		}
		p.rawf(`<option value="%s"%s>%s</option>`, esc(c), selAttr, esc(c))
	}
	p.raw(`</select></label><br><button type="submit" class="secondary">Apply selection</button></form>`)
}

func removeButton(p *printer, base string) {
	p.rawf(`<form class="inline" method="post" action="%s/remove"><button type="submit" class="danger">Remove file</button></form>`, base)
}
