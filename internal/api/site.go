package api

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/vera-landing/internal/web"
)

// SitemapLastModified is the content date published in sitemap.xml.
const SitemapLastModified = "2026-02-16T00:00:00.000Z"

var sitemapImages = []string{
	"/images/facade-day.jpg",
	"/images/night-facade.jpg",
	"/images/resort-pool.jpg",
}

func (s *Server) siteURL() string {
	return strings.TrimRight(s.cfg.Site.URL, "/")
}

func (s *Server) robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	body := fmt.Sprintf("User-Agent: *\nAllow: /\nDisallow: /api/\n\nHost: %s\nSitemap: %s/sitemap.xml\n",
		s.cfg.Site.Domain, s.siteURL())
	if _, err := w.Write([]byte(body)); err != nil {
		s.logger.Error("write robots.txt failed", zap.Error(err))
	}
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	Image   string       `xml:"xmlns:image,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string         `xml:"loc"`
	Alternates []alternateRef `xml:"xhtml:link"`
	Images     []sitemapImage `xml:"image:image"`
	LastMod    string         `xml:"lastmod"`
	ChangeFreq string         `xml:"changefreq"`
	Priority   int            `xml:"priority"`
}

type alternateRef struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type sitemapImage struct {
	Loc string `xml:"image:loc"`
}

func (s *Server) sitemap(w http.ResponseWriter, _ *http.Request) {
	base := s.siteURL()
	entry := sitemapURL{
		Loc:        base,
		Alternates: []alternateRef{{Rel: "alternate", HrefLang: "ru-RU", Href: base}},
		LastMod:    SitemapLastModified,
		ChangeFreq: "weekly",
		Priority:   1,
	}
	for _, img := range sitemapImages {
		entry.Images = append(entry.Images, sitemapImage{Loc: base + img})
	}
	doc := urlSet{
		NS:    "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		Image: "http://www.google.com/schemas/sitemap-image/1.1",
		URLs:  []sitemapURL{entry},
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		s.logger.Error("write sitemap failed", zap.Error(err))
		return
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		s.logger.Error("encode sitemap failed", zap.Error(err))
	}
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Lang            string         `json:"lang"`
	Icons           []manifestIcon `json:"icons"`
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

func (s *Server) manifest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	m := webManifest{
		Name:            s.cfg.Site.Name,
		ShortName:       s.cfg.Site.Name,
		Description:     "Апартаменты в " + s.cfg.Site.Name + " в Сочи, Уч-Дере. Инвестиционный формат и курортная инфраструктура.",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: web.ThemeColor,
		ThemeColor:      web.ThemeColor,
		Lang:            "ru-RU",
		Icons:           []manifestIcon{{Src: "/favicon.ico", Sizes: "any", Type: "image/x-icon"}},
	}
	if err := json.NewEncoder(w).Encode(m); err != nil {
		s.logger.Error("encode manifest failed", zap.Error(err))
	}
}

// clientConfig is published to the browser as window.__APP_CONFIG__.
type clientConfig struct {
	LeadWebhookURL   string `json:"leadWebhookUrl"`
	TelegramBotToken string `json:"telegramBotToken,omitempty"`
	TelegramChatID   string `json:"telegramChatId,omitempty"`
}

// runtimeConfig exposes the client delivery settings. Telegram credentials
// are published only while the fallback is enabled.
func (s *Server) runtimeConfig(w http.ResponseWriter, _ *http.Request) {
	rc := clientConfig{LeadWebhookURL: s.cfg.LeadEndpoint()}
	if s.cfg.FallbackActive() {
		rc.TelegramBotToken = strings.TrimSpace(s.cfg.Dispatch.Fallback.BotToken)
		rc.TelegramChatID = strings.TrimSpace(s.cfg.Dispatch.Fallback.ChatID)
	}
	payload, err := json.Marshal(rc)
	if err != nil {
		s.logger.Error("encode runtime config failed", zap.Error(err))
		http.Error(w, "runtime config unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := fmt.Fprintf(w, "window.__APP_CONFIG__ = %s;\n", payload); err != nil {
		s.logger.Error("write runtime config failed", zap.Error(err))
	}
}
