package service

import "strings"

// NormalizeOptionalText canonicalizes an optional free-text field for create:
// absent or blank input becomes nil, anything else is trimmed.
func NormalizeOptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizeOptionalTextUpdate canonicalizes an optional free-text field for a
// partial update. A nil input leaves the field untouched (set is false); a
// blank input clears it.
func NormalizeOptionalTextUpdate(s *string) (value *string, set bool) {
	if s == nil {
		return nil, false
	}
	return NormalizeOptionalText(s), true
}
