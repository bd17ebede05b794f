// Package components provides the shared page layout used by all
// dashboard features. Components are plain functions returning
// templ.Component so features can compose and patch them over SSE.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// datastarCDN is the browser runtime that wires data-* attributes to
// the SSE endpoints.
const datastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

// NavLink is one entry in the top navigation.
type NavLink struct {
	Href  string
	Label string
}

// Page wraps a body component in the full HTML document shell.
func Page(title string, isDev bool, nav []NavLink, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1">`+
				`<title>%s - pipedash</title>`+
				`<script type="module" src="%s"></script>`+
				`<link rel="stylesheet" href="/static/app.css">`+
				`</head><body>`,
			templ.EscapeString(title), datastarCDN); err != nil {
			return err
		}

		if isDev {
			// Reconnects to the reload stream so edits refresh the page.
			if _, err := io.WriteString(w, `<div data-on-load="@get('/reload')"></div>`); err != nil {
				return err
			}
		}

		if err := Navbar(nav).Render(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<main class="content">`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// Navbar renders the top navigation bar.
func Navbar(links []NavLink) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w,
			`<nav class="navbar"><a class="brand" href="/">pipedash</a>`); err != nil {
			return err
		}
		for _, l := range links {
			if _, err := fmt.Fprintf(w, `<a href="%s">%s</a>`,
				templ.EscapeString(l.Href), templ.EscapeString(l.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</nav>`)
		return err
	})
}
