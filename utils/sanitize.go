package utils

import "github.com/microcosm-cc/bluemonday"

// Metadata fields are plain text, so every tag is stripped.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from admin-entered metadata to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
