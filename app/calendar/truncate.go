package calendar

import (
	"strings"

	"golang.org/x/net/html"
)

// Void elements never receive a closing tag (HTML spec, section 13.1.2).
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// TruncateHTML cuts rendered HTML down to at most maxChars visible text
// characters without ever leaving a tag unclosed. Tags, attributes and
// entity escapes do not count against the budget. Truncation may cut in
// the middle of a paragraph; every element open at the cut point is
// closed in reverse order.
func TruncateHTML(src string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(src))
	var out strings.Builder
	var open []string
	remaining := maxChars

	for remaining > 0 {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}

		switch tokenType {
		case html.TextToken:
			text := []rune(string(tokenizer.Text()))
			if len(text) > remaining {
				text = text[:remaining]
			}
			out.WriteString(html.EscapeString(string(text)))
			remaining -= len(text)

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			out.Write(tokenizer.Raw())
			if !voidElements[string(name)] {
				open = append(open, string(name))
			}

		case html.SelfClosingTagToken:
			out.Write(tokenizer.Raw())

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if len(open) > 0 && open[len(open)-1] == string(name) {
				open = open[:len(open)-1]
				out.Write(tokenizer.Raw())
			}

		default:
			// Comments and doctypes are dropped from snippets.
		}
	}

	for i := len(open) - 1; i >= 0; i-- {
		out.WriteString("</" + open[i] + ">")
	}

	return out.String()
}
