package comments

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMinLength is the shortest accepted comment body in characters.
const DefaultMinLength = 3

// ValidationError is a user-facing rejection of a comment body. No request is
// made when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateBody trims body and checks it against minLength, counting code
// points after NFC normalization. It returns the normalized body to send.
// A non-positive minLength means DefaultMinLength.
func ValidateBody(body string, minLength int) (string, error) {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	trimmed := norm.NFC.String(strings.TrimSpace(body))
	if trimmed == "" {
		return "", &ValidationError{Message: "Comment cannot be empty"}
	}
	if utf8.RuneCountInString(trimmed) < minLength {
		return "", &ValidationError{Message: fmt.Sprintf("Comment must be at least %d characters", minLength)}
	}
	return trimmed, nil
}
