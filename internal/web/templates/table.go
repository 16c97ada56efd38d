package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

// DataTable renders t read-only with its column headers. Missing cells are
// shown as an empty, dimmed cell.
func DataTable(t *core.Table) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(ctx, w)
		if t == nil {
			return nil
		}
		p.raw(`<table class="data"><thead><tr>`)
		for _, name := range t.Columns() {
			p.raw(`<th>`)
			p.text(name)
			p.raw(`</th>`)
		}
		p.raw(`</tr></thead><tbody>`)
		for i := 0; i < t.Rows(); i++ {
			p.raw(`<tr>`)
			for _, c := range t.Row(i) {
				if c.Missing {
					p.raw(`<td class="missing"></td>`)
					continue
				}
				p.raw(`<td>`)
				p.text(c.String())
				p.raw(`</td>`)
			}
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}
