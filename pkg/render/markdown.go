// Package render provides the page preview (markdown to sanitised HTML using
// goldmark and bluemonday) and the reverse import from HTML.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/aretw0/mdninja/pkg/core"
)

// Markdown renders page markdown to HTML.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Markdown renderer.
type Option func(*Markdown)

// WithPolicy replaces the sanitising policy. A nil policy disables
// sanitising: raw HTML in the markdown is passed through.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(m *Markdown) {
		m.policy = p
	}
}

// NewMarkdown returns a GitHub-flavoured renderer whose output is cleaned
// with the bluemonday UGC policy (heading ids kept for anchors).
func NewMarkdown(opts ...Option) *Markdown {
	m := &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(), // raw HTML is left to the policy
			),
		),
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultPolicy is the UGC policy plus heading ids.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	return p
}

// Render implements core.Renderer.
func (m *Markdown) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	if m.policy == nil {
		return buf.String(), nil
	}
	return m.policy.Sanitize(buf.String()), nil
}

var defaultMarkdown = NewMarkdown()

// MarkdownToHTML converts markdown with the default renderer.
func MarkdownToHTML(markdown string) (string, error) {
	return defaultMarkdown.Render(markdown)
}

var _ core.Renderer = (*Markdown)(nil)
