package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/net/html"
)

// elements whose contents never belong in the extracted text
const strippedSelector = "script,style,noscript,iframe,svg,head"

// elements that end a line when converting markup to text
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "nav": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "table": true, "tr": true,
	"pre": true, "blockquote": true, "br": true, "hr": true,
}

// HTMLToText converts one fetched page into plain text wrapped at wrapWidth
// columns. Best effort: malformed markup degrades to the trimmed raw input,
// it never fails.
func HTMLToText(rawHTML string, wrapWidth int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return wrap(collapseLines(rawHTML), wrapWidth)
	}

	doc.Find(strippedSelector).Remove()

	root := doc.Selection
	if body := doc.Find("body"); body.Length() > 0 {
		root = body
	}

	var sb strings.Builder
	for _, node := range root.Nodes {
		writeText(&sb, node)
	}

	text := collapseLines(sb.String())
	if text == "" {
		//not html at all, pass the input through as-is
		text = collapseLines(rawHTML)
	}
	return wrap(text, wrapWidth)
}

// writeText walks the node tree appending text content, with a newline after
// every block-level element so words from adjacent blocks don't glue together.
func writeText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeText(sb, child)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		sb.WriteString("\n")
	}
}

// collapseLines squeezes runs of whitespace inside each line and drops empty
// lines, mirroring what html-to-text style converters emit.
func collapseLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return strings.Join(lines, "\n")
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
