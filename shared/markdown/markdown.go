// Package markdown renders stored thread text for display and strips markup
// from incoming text.
package markdown

import (
	"bytes"
	stdhtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type TextProcessor struct {
	md     goldmark.Markdown
	output *bluemonday.Policy
	input  *bluemonday.Policy
}

func New() *TextProcessor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewBlockquoteParser(), 800),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewLinkParser(), 200),
			util.Prioritized(parser.NewAutoLinkParser(), 300),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
		parser.WithParagraphTransformers(
			util.Prioritized(parser.LinkReferenceParagraphTransformer, 100),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	)

	output := bluemonday.UGCPolicy()
	output.RequireNoFollowOnLinks(true)
	output.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextProcessor{md: md, output: output, input: bluemonday.StrictPolicy()}
}

// Render converts thread text to sanitized HTML. On a render failure the
// escaped plain text is returned so a thread is never hidden.
func (tp *TextProcessor) Render(text string) string {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		return tp.output.Sanitize(text)
	}
	return strings.TrimSpace(tp.output.Sanitize(buf.String()))
}

// StripHTML removes every tag from user input before it is stored.
// The result is plain text, so entities escaped by the sanitizer are decoded.
func (tp *TextProcessor) StripHTML(text string) string {
	return stdhtml.UnescapeString(tp.input.Sanitize(text))
}
