// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when the caller does not provide one.
const DefaultRegion = "AR"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = DefaultRegion
	}

	// gateways often deliver bare international digits
	candidate := trimmed
	if !strings.HasPrefix(candidate, "+") && len(digitsOnly(candidate)) > 10 {
		candidate = "+" + digitsOnly(candidate)
	}

	number, err := phonenumbers.Parse(candidate, region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// ConversationID returns the canonical key used to scope a conversation:
// the E.164 number without the leading plus.
func ConversationID(input, region string) string {
	return strings.TrimPrefix(NormalizeE164(input, region), "+")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
