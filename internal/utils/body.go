package utils

import (
	"mime"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ReadableBody returns an error body as text fit for logs and API errors.
// Gateways in front of the provider answer with HTML pages; those are
// converted to markdown. Other bodies are returned as is. The result is
// truncated with [DefaultMaxStringLength].
func ReadableBody(contentType string, body []byte) string {
	text := string(body)
	if isHTML(contentType, text) {
		if markdown, err := htmltomarkdown.ConvertString(text); err == nil {
			text = strings.TrimSpace(markdown)
		}
	}
	return TruncateString(text, DefaultMaxStringLength)
}

func isHTML(contentType, body string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType == "text/html"
	}
	// Missing or malformed header: sniff the start of the body.
	head := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
