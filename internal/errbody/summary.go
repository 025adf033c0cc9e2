package errbody

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxSnippetBytes = 512
	maxHTMLBytes    = 1 << 20 // 1 MiB
)

// Summarize reduces an error response body to one short line. HTML error
// pages yield their title or first heading, JSON bodies their message or
// error field, anything else a trimmed snippet.
func Summarize(contentType string, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "html") || looksLikeHTML(body):
		if s := htmlSummary(body); s != "" {
			return s
		}
	case strings.Contains(ct, "json") || body[0] == '{':
		if s := jsonSummary(body); s != "" {
			return s
		}
	}
	return snippet(body)
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body[:min(len(body), 64)]))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func htmlSummary(body []byte) string {
	if len(body) > maxHTMLBytes {
		body = body[:maxHTMLBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	heading := collapse(doc.Find("h1").First().Text())
	title := collapse(doc.Find("title").First().Text())
	detail := collapse(doc.Find("body > div").First().Text())

	return firstNonEmpty(title, heading, detail)
}

func jsonSummary(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail", "title"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return collapse(s)
		}
	}
	return ""
}

func snippet(body []byte) string {
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return collapse(string(body))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
