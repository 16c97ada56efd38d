// Package templates holds the HTML components served by the web package.
//
// Components are templ.Component values so handlers render them the same
// way whether they return a full page or an HTMX fragment.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// printer writes HTML and keeps the first error, so components can emit
// markup without checking every write.
type printer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newPrinter(ctx context.Context, w io.Writer) *printer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &printer{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// rawf writes trusted markup built with fmt. Arguments must already be
// escaped.
func (p *printer) rawf(format string, args ...any) {
	p.raw(fmt.Sprintf(format, args...))
}

// text writes escaped text, safe in element bodies and quoted attributes.
func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) component(c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// HumanSize formats a byte count as B, KB, MB or GB.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
