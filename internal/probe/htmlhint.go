package probe

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxHintBytes = 1 << 20

// HTMLTitle returns the <title> (or first <h1>) of body when it looks like an
// HTML page, which is what proxies and misrouted servers usually return.
func HTMLTitle(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}
	if len(trimmed) > maxHintBytes {
		trimmed = trimmed[:maxHintBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
