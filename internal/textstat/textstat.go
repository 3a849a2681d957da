// Package textstat converts submission text between Markdown, HTML and plain
// text, and counts its length.
package textstat

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// RenderMarkdown converts Markdown source to HTML. Raw HTML in the source is
// omitted.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// PlainText returns the visible text of an HTML fragment, with block
// elements separated by newlines.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style").Remove()
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, blockquote, pre, br").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return strings.TrimSpace(doc.Text())
}

// Count returns the number of non-whitespace characters in the visible text
// of html. For Chinese text this is the usual 字数.
func Count(html string) int {
	return CountText(PlainText(html))
}

// CountText counts the non-whitespace runes of plain text.
func CountText(text string) int {
	n := 0
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// Excerpt returns the first n runes of the visible text of html, with an
// ellipsis when it was cut.
func Excerpt(html string, n int) string {
	text := strings.Join(strings.Fields(PlainText(html)), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "…"
}
