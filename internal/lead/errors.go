package lead

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks submissions missing required fields.
	ErrValidation = errors.New("lead validation failed")
	// ErrConfiguration marks a delivery path that lacks its credentials.
	ErrConfiguration = errors.New("lead delivery not configured")
	// ErrDelivery marks transport failures, timeouts and negative acknowledgements.
	ErrDelivery = errors.New("lead delivery failed")
)

// MissingFieldsMessage is reported to callers for any validation failure.
const MissingFieldsMessage = "Missing required fields: name, phone"

// ValidationError lists the required fields that were empty after trimming.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return MissingFieldsMessage
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DeliveryError describes a failed channel attempt.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "deliver via %s", e.Channel)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, "; body=%s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both ErrDelivery and the underlying cause.
func (e *DeliveryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDelivery}
	}
	return []error{ErrDelivery, e.Err}
}
