package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// elements whose content never reaches the text view.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"head":     true,
	"noscript": true,
	"template": true,
}

// elements rendered as their own line.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"ul": true, "ol": true, "hr": true, "blockquote": true, "center": true,
}

// StripHTML renders readable text from an HTML document. Table cells are
// separated by spaces and rows by line breaks so "Total | $45.00" stays on one line.
func StripHTML(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return ""
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipElements[n.Data] {
				return
			}
			if n.Data == "td" || n.Data == "th" {
				b.WriteString(" ")
			}
			if blockElements[n.Data] {
				b.WriteString("\n")
			}
		case html.TextNode:
			b.WriteString(n.Data)
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString("\n")
		}
	}
	walk(root)
	return Clean(b.String())
}
