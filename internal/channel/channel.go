// Package channel holds helpers shared by the lead delivery channels.
package channel

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"
)

// DefaultTimeout bounds every outbound delivery call.
const DefaultTimeout = 10 * time.Second

// MaxErrorBody is the number of characters of an upstream body kept for diagnostics.
const MaxErrorBody = 300

const maxReadBody = 64 << 10

// Timeout returns d, or DefaultTimeout when d is not positive.
func Timeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Client returns c, or a plain client when c is nil.
func Client(c *http.Client) *http.Client {
	if c == nil {
		return &http.Client{}
	}
	return c
}

// ReadBody reads a bounded amount of a response body. A read error keeps
// whatever arrived before it.
func ReadBody(resp *http.Response) []byte {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxReadBody))
	return data
}

// Snippet truncates a response body for inclusion in an error.
func Snippet(body []byte) string {
	if utf8.RuneCount(body) <= MaxErrorBody {
		return string(body)
	}
	return string([]rune(string(body))[:MaxErrorBody])
}

// Redact strips the request URL from transport errors. Bot API URLs embed the
// bot token, so the URL must never reach logs or callers.
func Redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// Success reports whether the status code is 2xx.
func Success(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// Drain discards the rest of a response body and closes it.
func Drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReadBody))
	_ = resp.Body.Close()
}
