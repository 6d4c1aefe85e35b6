// Package markdown turns assistant replies into HTML fragments ready for the chat
// widget.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	ClassLink       = "text-primary hover:underline"
	ClassList       = "list-disc pl-5 my-2"
	ClassOrdered    = "list-decimal pl-5 my-2"
	ClassPre        = "bg-muted/30 p-2 rounded-md text-xs my-2 overflow-x-auto"
	ClassBlockCode  = "font-mono"
	ClassInlineCode = "font-mono bg-muted/20 px-1 rounded text-xs"
	ClassTable      = "border-collapse w-full text-xs my-2"
	ClassTableHead  = "border border-border/30 p-1 bg-muted/30"
	ClassTableCell  = "border border-border/30 p-1"
)

var (
	engine = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// Render converts GitHub-flavoured markdown to styled HTML. Raw HTML in the input
// is not passed through.
func Render(text string) string {
	out, err := render(text)
	if err != nil {
		return fallback(text)
	}
	return out
}

func render(text string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered html: %w", err)
	}

	doc.Find("a").
		AddClass(ClassLink).
		SetAttr("target", "_blank").
		SetAttr("rel", "noopener noreferrer")
	doc.Find("ul").AddClass(ClassList)
	doc.Find("ol").AddClass(ClassOrdered)
	doc.Find("pre").AddClass(ClassPre)
	doc.Find("code").Each(func(_ int, s *goquery.Selection) {
		if s.Parent().Is("pre") {
			s.AddClass(ClassBlockCode)
			return
		}
		s.AddClass(ClassInlineCode)
	})
	doc.Find("table").AddClass(ClassTable)
	doc.Find("th").AddClass(ClassTableHead)
	doc.Find("td").AddClass(ClassTableCell)

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func fallback(text string) string {
	out := boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>$1</em>")
	return strings.ReplaceAll(out, "\n", "<br />")
}
