package lead

import "net/url"

// Form flattens the lead and the site identity into the relay's form fields.
// quiz is included only when present.
func (l Lead) Form(site SiteIdentity) url.Values {
	form := url.Values{}
	form.Set("siteId", clean(site.ID, MaxSiteID))
	form.Set("siteUrl", clean(site.URL, MaxSiteURL))
	form.Set("chatId", clean(site.ChatID, MaxChatID))
	form.Set("name", l.Name)
	form.Set("phone", l.Phone)
	form.Set("email", l.Email)
	form.Set("source", l.Source)
	form.Set("message", l.Message)
	form.Set("hp", l.HP)
	form.Set("pageUrl", l.PageURL)
	form.Set("siteHost", l.SiteHost)
	for _, pair := range l.UTM.Pairs() {
		form.Set(pair[0], pair[1])
	}
	if l.Quiz != "" {
		form.Set("quiz", l.Quiz)
	}
	return form
}
