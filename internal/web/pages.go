package web

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Site describes the landing site for rendering.
type Site struct {
	Name string
	URL  string
}

// PageTitle and PageDescription are the document metadata of the landing page.
const (
	PageTitle       = "ЛОК ВЕРА - апартаменты в Сочи | Инвестиции в курортную недвижимость"
	PageDescription = "Апартаменты в ЛОК VERA в Сочи, Уч-Дере. Инвестиционный формат, 214-ФЗ, эскроу. Получите презентацию."
)

// LandingPage renders the full page around the final lead form.
func LandingPage(site Site, state FormState) g.Node {
	return Layout(
		PageConfig{
			Title:        PageTitle,
			Description:  PageDescription,
			SiteName:     site.Name,
			CanonicalURL: site.URL,
		},
		Main(Class("lux-container"),
			Section(
				H1(g.Textf("Апартаменты в %s", site.Name)),
				P(Class("muted"), g.Text("Сочи, Уч-Дере. Инвестиционный формат и курортная инфраструктура.")),
				A(Class("btn-primary"), Href("#lead-final"), g.Text("Получить презентацию")),
			),
			Section(
				LeadForm("lead-final",
					"Получите презентацию проекта «"+site.Name+"»",
					"Оставьте заявку, чтобы получить презентацию и условия участия.",
					"Отправить заявку",
					state,
				),
			),
		),
	)
}
