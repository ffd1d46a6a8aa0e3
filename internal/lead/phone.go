package lead

import (
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to parse numbers written without a country code.
const DefaultPhoneRegion = "RU"

// FormatE164 formats a phone number to E.164. It reports false when the input
// does not parse to a valid number for the region.
func FormatE164(raw, region string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if region == "" {
		region = DefaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.E164), true
}
