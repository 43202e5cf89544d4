package logging

import "github.com/google/uuid"

// ValidateAndExtractRequestID keeps an incoming UUIDv7 request id and
// replaces anything else with a fresh one.
func ValidateAndExtractRequestID(incoming string) string {
	if incoming == "" {
		return NewRequestID()
	}

	parsed, err := uuid.Parse(incoming)
	if err != nil || parsed.Version() != 7 {
		return NewRequestID()
	}

	return incoming
}

func NewRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
