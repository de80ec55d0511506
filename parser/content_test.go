package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractArticle(t *testing.T) {
	paragraph := "<p>" + strings.Repeat("Widgets are the backbone of modern B2B infrastructure. ", 10) + "</p>"
	html := `<html><head><title>Widget Deep Dive</title></head><body>
	<nav><a href="/">Home</a><a href="/blog">Blog</a></nav>
	<article>
	<h1>Widget Deep Dive</h1>` + paragraph + paragraph + paragraph + `
	</article>
	<footer>© Acme</footer>
	</body></html>`

	content := ExtractArticle(html, "https://example.com/blog/widget-deep-dive")

	assert.NotEmpty(t, content.Markdown)
	assert.Contains(t, content.Text, "backbone of modern B2B infrastructure")
	assert.NotContains(t, content.Markdown, "<p>", "markdown output must not carry HTML tags")
}

func TestExtractArticleTooShortFallsBack(t *testing.T) {
	html := `<html><body><p>tiny</p></body></html>`
	content := ExtractArticle(html, "https://example.com/x")
	assert.Empty(t, content.Markdown)
	assert.NotEmpty(t, content.Text, "fallback keeps the raw page")
}

func TestExtractArticleBadURL(t *testing.T) {
	content := ExtractArticle("<html></html>", "http://exa mple.com/%")
	assert.Empty(t, content.Markdown)
}
