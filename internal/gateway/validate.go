package gateway

import (
	"strings"

	"github.com/google/uuid"
)

// ValidateIdentifier checks that value is a well-formed UUID before it is
// embedded in a URL or payload. The value is returned unchanged on success;
// callers pass canonical-form UUIDs and no case/hyphen normalization is
// applied.
func ValidateIdentifier(value, fieldName string) (string, error) {
	if value == "" {
		return "", invalidIdentifier(fieldName, value)
	}
	// uuid.Parse accepts urn: and braced forms; the wire contract is the
	// canonical 36-char form only.
	if len(value) != 36 {
		return "", invalidIdentifier(fieldName, value)
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", invalidIdentifier(fieldName, value)
	}
	return value, nil
}

// identifierParam reports whether a path parameter holds an identifier
// that must validate as a UUID. Parameters like {date} pass untouched.
func identifierParam(name string) bool {
	return strings.HasSuffix(name, "_id")
}
