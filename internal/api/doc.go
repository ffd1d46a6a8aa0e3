// Package api hosts the HTTP server, middleware chain and handlers of the
// landing service. Notable routes:
//   - GET / renders the landing page; POST /lead accepts its form.
//   - POST /api/lead is the JSON lead proxy that relays to Telegram.
//   - GET /healthz and /readyz for health checks, GET /metrics for Prometheus.
//   - GET /robots.txt, /sitemap.xml, /manifest.webmanifest and
//     /runtime-config.js publish site metadata.
package api
