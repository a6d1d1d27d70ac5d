package fetch

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText parses HTML and returns the human-readable text content.
// Text inside script, style and noscript elements is excluded, remaining
// fragments are joined with single spaces, and the result is trimmed.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	// Fields collapses all runs of whitespace, including the newlines
	// goquery leaves between block elements.
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// Truncate caps text at max characters. Returns the (possibly shortened)
// text and whether the cap was applied. Truncating already-truncated text
// at the same limit is a no-op.
//
// The cap counts characters, not bytes, so a multi-byte rune is never cut
// in half and the result is always valid UTF-8.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 {
		return text, false
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i], true
		}
		count++
	}
	return text, false
}
