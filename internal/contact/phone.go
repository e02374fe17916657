// Package contact normalizes the contact details players share with their
// partners and opponents.
package contact

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone parses raw using defaultRegion for numbers without a
// country code and returns the E.164 form. An empty input returns "".
func NormalizePhone(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// DisplayPhone formats a stored E.164 number for people in homeRegion:
// national format for local numbers, international format otherwise.
// Unparseable input is returned unchanged.
func DisplayPhone(e164, homeRegion string) string {
	e164 = strings.TrimSpace(e164)
	if e164 == "" {
		return ""
	}
	num, err := phonenumbers.Parse(e164, strings.ToUpper(homeRegion))
	if err != nil {
		return e164
	}
	if phonenumbers.GetRegionCodeForNumber(num) == strings.ToUpper(homeRegion) {
		return phonenumbers.Format(num, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
