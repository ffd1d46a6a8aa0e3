package web

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/JakeFAU/vera-landing/internal/lead"
)

// Form field names posted to the lead handler.
const (
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldContactMethod = "contact_method"
	FieldPageURL       = "page_url"
	FieldHoneypot      = "website"
)

// User-facing strings.
const (
	SuccessTitle = "Спасибо, заявка получена."
	SuccessText  = "Менеджер свяжется с вами и отправит презентацию проекта."
	ErrorText    = "Не удалось отправить заявку. Попробуйте еще раз."
	ConsentText  = "Нажимая кнопку, вы соглашаетесь на обработку персональных данных."
)

// ContactMethods lists the choices offered in the form, default first.
var ContactMethods = []string{lead.DefaultContactMethod, "WhatsApp", "Telegram"}

// FormState carries the values and outcome rendered into a lead form.
type FormState struct {
	PageURL       string
	UTM           lead.UTM
	Name          string
	Phone         string
	ContactMethod string
	Success       bool
	Error         string
}

// LeadForm renders one lead capture panel. id prefixes the element IDs so
// several panels can share a page.
func LeadForm(id, title, subtitle, buttonLabel string, state FormState) g.Node {
	method := state.ContactMethod
	if method == "" {
		method = lead.DefaultContactMethod
	}

	return Div(Class("glass-panel"), ID(id),
		H3(g.Text(title)),
		P(Class("muted"), g.Text(subtitle)),
		Form(Class("lead-form"), Method("post"), Action("/lead"),
			Label(For(id+"-name"), Class("sr-only"), g.Text("Имя")),
			Input(ID(id+"-name"), Name(FieldName), Class("field"), Placeholder("Ваше имя"),
				Value(state.Name), AutoComplete("name"), Required()),
			Label(For(id+"-phone"), Class("sr-only"), g.Text("Телефон")),
			Input(ID(id+"-phone"), Name(FieldPhone), Type("tel"), Class("field"), Placeholder("Телефон"),
				Value(state.Phone), AutoComplete("tel"), Required()),
			Label(For(id+"-contact"), Class("sr-only"), g.Text("Способ связи")),
			Select(ID(id+"-contact"), Name(FieldContactMethod), Class("field"),
				g.Map(ContactMethods, func(option string) g.Node {
					return Option(Value(option), g.If(option == method, Selected()), g.Text(option))
				}),
			),
			Input(Name(FieldHoneypot), Class("hidden"), TabIndex("-1"), AutoComplete("off"), Aria("hidden", "true")),
			hidden(FieldPageURL, state.PageURL),
			g.Map(state.UTM.Pairs(), func(pair [2]string) g.Node {
				return hidden(pair[0], pair[1])
			}),
			Button(Class("btn-primary"), Type("submit"), g.Text(buttonLabel)),
		),
		g.If(state.Error != "", P(Class("error"), Role("alert"), g.Text(state.Error))),
		P(Class("muted"), g.Text(ConsentText)),
		g.If(state.Success, successDialog()),
	)
}

func successDialog() g.Node {
	return Div(Class("dialog"), Role("dialog"), Aria("modal", "true"), Aria("label", "Заявка отправлена"),
		Div(Class("glass-panel"),
			H4(g.Text(SuccessTitle)),
			P(Class("muted"), g.Text(SuccessText)),
			A(Class("btn-primary"), Href("/"), g.Text("Закрыть")),
		),
	)
}

func hidden(name, value string) g.Node {
	if value == "" {
		return nil
	}
	return Input(Type("hidden"), Name(name), Value(value))
}
