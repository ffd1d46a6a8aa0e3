package lead

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Normalize turns an untrusted submission into a fully populated Lead.
//
// Scalars are coerced to strings, every value is trimmed and capped, and the
// attribution tags are resolved in priority order: the explicit utm_* field,
// then the nested "utm" group, then the query string of the originating page.
// A present key wins even when its value is empty. Normalize never fails.
func Normalize(raw Raw) Lead {
	pageURL := clean(first(raw, "pageUrl", "page_url"), MaxPageURL)

	siteHost := ""
	if v, ok := lookup(raw, "siteHost", "site_host"); ok {
		siteHost = clean(v, MaxSiteHost)
	} else {
		siteHost = clean(hostname(pageURL), MaxSiteHost)
	}

	source := DefaultSource
	if v, ok := lookup(raw, "source"); ok {
		source = clean(v, MaxSource)
	}

	return Lead{
		Name:          clean(raw["name"], MaxName),
		Phone:         clean(raw["phone"], MaxPhone),
		Email:         clean(raw["email"], MaxEmail),
		ContactMethod: contactMethod(clean(first(raw, "contactMethod", "contact_method"), MaxContactMethod)),
		Source:        source,
		Message:       clean(raw["message"], MaxMessage),
		Quiz:          normalizeQuiz(raw["quiz"]),
		HP:            clean(raw["hp"], MaxHoneypot),
		PageURL:       pageURL,
		SiteHost:      siteHost,
		UTM:           resolveUTM(raw, pageURL),
	}
}

// NormalizeExplicit is the server-side normalizer. It reads explicit string
// fields only: no attribution group, no page query fallback, and non-string
// values are treated as absent.
func NormalizeExplicit(raw Raw) Lead {
	return Lead{
		Name:          capped(text(raw["name"]), MaxName),
		Phone:         capped(text(raw["phone"]), MaxPhone),
		Email:         capped(text(raw["email"]), MaxEmail),
		ContactMethod: contactMethod(capped(text(first(raw, "contact_method", "contactMethod")), MaxContactMethod)),
		Message:       capped(text(raw["message"]), MaxMessage),
		HP:            capped(text(raw["hp"]), MaxHoneypot),
		PageURL:       capped(text(first(raw, "page_url", "pageUrl")), MaxPageURL),
		UTM: UTM{
			Source:   capped(text(raw["utm_source"]), MaxUTM),
			Medium:   capped(text(raw["utm_medium"]), MaxUTM),
			Campaign: capped(text(raw["utm_campaign"]), MaxUTM),
			Term:     capped(text(raw["utm_term"]), MaxUTM),
			Content:  capped(text(raw["utm_content"]), MaxUTM),
		},
	}
}

// ParseJSON decodes a request body into a Raw. Anything that is not a JSON
// object yields an empty Raw so malformed input funnels into validation.
func ParseJSON(body []byte) Raw {
	var raw Raw
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return Raw{}
	}
	return raw
}

// RawFromForm converts submitted form values into a Raw. Empty values are
// dropped so lower-priority attribution sources still apply. The form's
// honeypot input is named "website".
func RawFromForm(values url.Values) Raw {
	raw := Raw{}
	for key, vals := range values {
		if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		if key == "website" {
			key = "hp"
		}
		raw[key] = vals[0]
	}
	return raw
}

func resolveUTM(raw Raw, pageURL string) UTM {
	group, _ := raw["utm"].(map[string]any)
	query := pageQuery(pageURL)

	pick := func(key string) string {
		if v, ok := lookup(raw, key); ok {
			return clean(v, MaxUTM)
		}
		if v, ok := lookup(group, key); ok {
			return clean(v, MaxUTM)
		}
		return clean(query.Get(key), MaxUTM)
	}

	return UTM{
		Source:   pick("utm_source"),
		Medium:   pick("utm_medium"),
		Campaign: pick("utm_campaign"),
		Term:     pick("utm_term"),
		Content:  pick("utm_content"),
	}
}

func normalizeQuiz(v any) string {
	switch q := v.(type) {
	case nil:
		return ""
	case string:
		return capped(strings.TrimSpace(q), MaxQuiz)
	case json.Number, float64, int, int64, bool:
		return clean(q, MaxQuiz)
	default:
		// Objects, arrays and structs of any Go type are kept as JSON text.
		encoded, err := json.Marshal(q)
		if err != nil {
			return ""
		}
		return capped(strings.TrimSpace(string(encoded)), MaxQuiz)
	}
}

func contactMethod(v string) string {
	if v == "" {
		return DefaultContactMethod
	}
	return v
}

// lookup returns the first present, non-null key.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func first(m map[string]any, keys ...string) any {
	v, _ := lookup(m, keys...)
	return v
}

// clean coerces scalars to text, trims and caps. Objects and arrays become "".
func clean(v any, maxLen int) string {
	var s string
	switch val := v.(type) {
	case nil:
	case string:
		s = val
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case bool:
		s = strconv.FormatBool(val)
	}
	return capped(strings.TrimSpace(s), maxLen)
}

func text(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func capped(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

func pageQuery(pageURL string) url.Values {
	if pageURL == "" {
		return url.Values{}
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}

func hostname(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
