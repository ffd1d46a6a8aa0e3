// Command landing serves the ЛОК VERA landing page and its lead intake.
//
// Subcommands:
//   - serve runs the HTTP server: the landing page and its form handler, the
//     /api/lead Telegram proxy, site metadata, health checks and /metrics. It drains
//     in-flight requests on SIGINT or SIGTERM.
//   - send dispatches one lead through the configured channels and exits
//     non-zero when no channel accepted it. Use it to check delivery settings.
//
// Configuration comes from an optional --config file, a .env file in the
// working directory and LANDING_* environment variables. The legacy names
// PORT, TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID, NEXT_PUBLIC_LEAD_WEBHOOK_URL,
// NEXT_PUBLIC_TELEGRAM_BOT_TOKEN and NEXT_PUBLIC_TELEGRAM_CHAT_ID are honored.
package main
