package services

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]+`)

// RenderChunk converts a resolved field value into a sanitized tag
// chunk: flatten to a string, uppercase, strip everything outside
// [A-Z0-9], truncate to maxLen when positive. An unusable value yields
// the empty string; the segment loop rejects empty chunks.
func RenderChunk(value interface{}, maxLen int) string {
	text := StringifyValue(value)
	chunk := nonAlphanumeric.ReplaceAllString(strings.ToUpper(text), "")
	if maxLen > 0 && len(chunk) > maxLen {
		chunk = chunk[:maxLen]
	}
	return chunk
}

// RenderCodeChunk is RenderChunk with a literal fallback for chunks
// that sanitize to nothing. Used by the legacy category/location tag
// scheme, which always needs a printable token.
func RenderCodeChunk(value interface{}, maxLen int, fallback string) string {
	chunk := RenderChunk(value, maxLen)
	if chunk == "" {
		return fallback
	}
	return chunk
}
