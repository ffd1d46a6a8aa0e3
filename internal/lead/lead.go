// Package lead defines the lead record captured by the landing page form, along
// with its normalization, validation, error taxonomy and the operator-facing
// message text.
package lead

import (
	"context"
	"time"
)

// Field caps, counted in characters, applied to every value before transport.
const (
	MaxSiteID        = 80
	MaxSiteURL       = 255
	MaxChatID        = 80
	MaxName          = 100
	MaxPhone         = 30
	MaxEmail         = 120
	MaxSource        = 80
	MaxMessage       = 4000
	MaxQuiz          = 12000
	MaxPageURL       = 1500
	MaxSiteHost      = 255
	MaxHoneypot      = 255
	MaxUTM           = 120
	MaxContactMethod = 80
)

const (
	// DefaultContactMethod is the contact method shown when the submitter picked none.
	DefaultContactMethod = "Телефон"
	// DefaultSource tags relay submissions that carry no explicit source.
	DefaultSource = "lead"
)

// Raw is an untrusted submission as decoded from a request body or form.
type Raw map[string]any

// UTM carries the marketing attribution tags of a submission.
type UTM struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

// Pairs returns the tags in display order keyed by their query parameter name.
func (u UTM) Pairs() [][2]string {
	return [][2]string{
		{"utm_source", u.Source},
		{"utm_medium", u.Medium},
		{"utm_campaign", u.Campaign},
		{"utm_term", u.Term},
		{"utm_content", u.Content},
	}
}

// Lead is a normalized submission. Every field is trimmed and capped.
type Lead struct {
	Name          string `validate:"required"`
	Phone         string `validate:"required"`
	Email         string
	ContactMethod string
	Source        string
	Message       string
	Quiz          string
	HP            string
	PageURL       string
	SiteHost      string
	UTM           UTM
}

// Spam reports whether the honeypot field was filled in.
func (l Lead) Spam() bool {
	return l.HP != ""
}

// SiteIdentity is the static site configuration attached to relay submissions.
type SiteIdentity struct {
	ID     string
	URL    string
	ChatID string
}

// Channel delivers a normalized lead to one destination.
// Implementations return nil on success and a *DeliveryError otherwise.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, l Lead) error
}

// Clock abstracts time for message timestamps.
type Clock interface {
	Now() time.Time
}
