package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a user-facing error with its code and suggested action.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(ctx, w)
		p.raw(`<div class="alert alert-error" role="alert"><strong>`)
		p.text(message)
		p.raw(`</strong>`)
		if action != "" {
			p.raw(`<div>`)
			p.text(action)
			p.raw(`</div>`)
		}
		if code != "" {
			p.raw(`<div class="muted">Code: `)
			p.text(code)
			p.raw(`</div>`)
		}
		p.raw(`</div>`)
		return p.err
	})
}

// SuccessBanner renders a confirmation message.
func SuccessBanner(message string) templ.Component {
	return alert("alert-success", "status", message)
}

// Warning renders a non-fatal problem.
func Warning(message string) templ.Component {
	return alert("alert-warning", "status", message)
}

func alert(class, role, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(ctx, w)
		p.rawf(`<div class="alert %s" role="%s">`, class, role)
		p.text(message)
		p.raw(`</div>`)
		return p.err
	})
}
