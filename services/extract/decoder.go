package extract

import (
	"encoding/base64"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ledgerstack/ledgerstack/interfaces"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// DecodeBody extracts readable text from a message payload. A text/plain part
// is preferred over text/html at any depth; an HTML part is stripped down to
// its text content. When no part decodes it falls back to the message
// snippet, so the result is empty only when the snippet is too.
func DecodeBody(message *interfaces.RawMessage) string {
	if message == nil || message.Payload == nil {
		return ""
	}

	if plain := findPart(message.Payload, mimeTextPlain); plain != "" {
		return plain
	}
	if html := findPart(message.Payload, mimeTextHTML); html != "" {
		return stripHTML(html)
	}

	// Single-part messages carry the body on the payload itself.
	if data := decodeData(message.Payload.Data); data != "" {
		if strings.HasPrefix(message.Payload.MimeType, mimeTextHTML) {
			return stripHTML(data)
		}
		return data
	}

	return message.Snippet
}

func findPart(part *interfaces.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if strings.HasPrefix(part.MimeType, mimeType) {
		if data := decodeData(part.Data); data != "" {
			return data
		}
	}
	for _, child := range part.Parts {
		if data := findPart(child, mimeType); data != "" {
			return data
		}
	}
	return ""
}

// decodeData decodes URL-safe base64 as the Gmail API emits it, tolerating
// both padded and unpadded input. Invalid UTF-8 bytes are dropped rather than
// failing the whole message.
func decodeData(data string) string {
	if data == "" {
		return ""
	}
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return strings.ToValidUTF8(string(raw), "")
}

func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style").Remove()
	return strings.TrimSpace(doc.Text())
}
