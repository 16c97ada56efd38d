package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `
body { background: #000; color: #fff; font-family: system-ui, sans-serif; margin: 0; }
main { max-width: 1100px; margin: 0 auto; padding: 2rem 1rem; }
h1, h2, h3 { font-weight: 600; }
a { color: #7cc4ff; }
.card { border: 1px solid #333; border-radius: 8px; padding: 1rem 1.25rem; margin: 1.5rem 0; background: #0d0d0d; }
.card header { display: flex; justify-content: space-between; align-items: baseline; }
.muted { color: #999; font-size: 0.9em; }
.alert { border-radius: 6px; padding: 0.75rem 1rem; margin: 0.75rem 0; }
.alert-error { background: #3b0d0d; border: 1px solid #a33; }
.alert-success { background: #0d3b16; border: 1px solid #2a8a3e; }
.alert-warning { background: #3b300d; border: 1px solid #a88a2a; }
table.data { border-collapse: collapse; width: 100%; overflow-x: auto; display: block; font-size: 0.9em; }
table.data th, table.data td { border: 1px solid #333; padding: 0.3rem 0.6rem; text-align: left; white-space: nowrap; }
table.data th { background: #1a1a1a; }
table.data td.missing { color: #666; }
form.inline { display: inline-block; margin: 0.25rem 0.5rem 0.25rem 0; }
button { background: #1f6feb; color: #fff; border: 0; border-radius: 4px; padding: 0.4rem 0.9rem; cursor: pointer; }
button.secondary { background: #333; }
button.danger { background: #a33; }
fieldset { border: 1px solid #333; border-radius: 6px; margin: 0.75rem 0; }
.chart img { max-width: 100%; background: #000; }
ul.history { font-size: 0.85em; color: #aaa; }
`

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(ctx, w)
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.rawf(`<title>%s</title><style>%s</style></head><body><main>`, esc(title), styles)
		p.component(body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}
