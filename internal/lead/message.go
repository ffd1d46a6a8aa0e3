package lead

import (
	"strings"
	"time"
)

// TimestampLayout renders submission times as ISO 8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MessageMeta carries the request context rendered into the operator message.
type MessageMeta struct {
	SiteDomain  string
	PhoneRegion string
	SubmittedAt time.Time
	// ClientIP and UserAgent are rendered only when set.
	ClientIP  string
	UserAgent string
}

// ComposeMessage renders the human-readable text sent to the messaging bot.
func ComposeMessage(l Lead, meta MessageMeta) string {
	heading := "Новая заявка с сайта"
	if meta.SiteDomain != "" {
		heading += " " + meta.SiteDomain
	}

	phone := l.Phone
	if e164, ok := FormatE164(l.Phone, meta.PhoneRegion); ok && e164 != l.Phone {
		phone += " (" + e164 + ")"
	}

	page := l.PageURL
	if page == "" {
		page = "unknown"
	}

	lines := []string{
		heading,
		"",
		"Имя: " + l.Name,
		"Телефон: " + phone,
		"Способ связи: " + l.ContactMethod,
		"Страница: " + page,
		"Время (UTC): " + meta.SubmittedAt.UTC().Format(TimestampLayout),
	}
	if meta.ClientIP != "" {
		lines = append(lines, "IP: "+meta.ClientIP)
	}
	if meta.UserAgent != "" {
		lines = append(lines, "User-Agent: "+meta.UserAgent)
	}

	var attribution []string
	for _, pair := range l.UTM.Pairs() {
		if pair[1] != "" {
			attribution = append(attribution, pair[0]+": "+pair[1])
		}
	}
	if len(attribution) > 0 {
		lines = append(lines, "")
		lines = append(lines, attribution...)
	}

	return strings.Join(lines, "\n")
}
