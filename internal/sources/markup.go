package sources

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup returns the text content of an HTML/XML fragment with
// entities decoded and whitespace collapsed.
func StripMarkup(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// block-level boundaries must not glue words together
			name, _ := z.TagName()
			switch string(name) {
			case "p", "br", "div", "li", "tr", "td":
				b.WriteByte(' ')
			}
		}
	}
}
