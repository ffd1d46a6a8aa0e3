// Package web renders the landing page with gomponents.
package web

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// ThemeColor is the page background and the manifest theme color.
const ThemeColor = "#090b10"

// PageConfig carries the document metadata.
type PageConfig struct {
	Title        string
	Description  string
	SiteName     string
	CanonicalURL string
}

// Layout wraps content in the HTML document shell.
func Layout(config PageConfig, content ...g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("ru-RU"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				Meta(Name("theme-color"), Content(ThemeColor)),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),
				Meta(Name("application-name"), Content(config.SiteName)),
				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),
				Meta(g.Attr("property", "og:locale"), Content("ru_RU")),
				g.If(config.CanonicalURL != "", Link(Rel("canonical"), Href(config.CanonicalURL))),
				Link(Rel("manifest"), Href("/manifest.webmanifest")),
				Link(Rel("icon"), Href("/favicon.ico")),
				StyleEl(g.Raw(styles)),
				Script(Src("/runtime-config.js")),
			),
			Body(
				g.Group(content),
			),
		),
	})
}

const styles = `
body{margin:0;background:#090b10;color:#f5f1e8;font-family:Manrope,system-ui,sans-serif}
.lux-container{max-width:1100px;margin:0 auto;padding:48px 24px}
h1,h3,h4{font-family:"Cormorant Garamond",Georgia,serif;font-weight:500}
.glass-panel{background:rgba(255,255,255,.06);border:1px solid rgba(255,255,255,.12);border-radius:24px;padding:32px;max-width:440px}
.field{width:100%;box-sizing:border-box;padding:14px 16px;border-radius:12px;border:1px solid rgba(255,255,255,.2);background:transparent;color:inherit}
.btn-primary{display:inline-block;padding:14px 24px;border:0;border-radius:999px;background:#c9a86a;color:#090b10;font-weight:600;cursor:pointer;text-decoration:none}
.lead-form{display:flex;flex-direction:column;gap:16px;margin-top:24px}
.hidden{display:none}
.sr-only{position:absolute;width:1px;height:1px;overflow:hidden;clip:rect(0,0,0,0)}
.error{color:#fca5a5}
.muted{color:rgba(255,255,255,.6);font-size:.85rem}
.dialog{position:fixed;inset:0;display:flex;align-items:center;justify-content:center;background:rgba(0,0,0,.7);padding:24px}
`
