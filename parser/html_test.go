package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html>
<head>
	<title> Acme Blog </title>
	<meta name="author" content="Jane Doe">
	<meta property="og:description" content="Widgets explained">
</head>
<body>
	<article class="entry-content">
		<h1>Widget Deep Dive</h1>
		<p>One two three four five six.</p>
		<a rel="tag" href="/tag/widgets">Widgets</a>
		<a rel="tag" href="/tag/widgets">Widgets</a>
	</article>
	<a href="/blog/post-1">Post 1</a>
	<a href="https://example.com/blog/post-1#comments">Post 1 again</a>
	<a href="mailto:hi@example.com">Mail</a>
	<a href="/assets/logo.png">Logo</a>
</body>
</html>`

func TestPageBasics(t *testing.T) {
	p, err := Parse(samplePage, "https://example.com/blog")
	require.NoError(t, err)

	assert.Equal(t, "Acme Blog", p.Title())
	assert.Equal(t, "Jane Doe", p.Meta("author"))
	assert.Equal(t, "Widgets explained", p.Meta("og:description"))
}

func TestPageTitleFallsBackToH1(t *testing.T) {
	p, err := Parse(`<html><body><h1>Headline</h1></body></html>`, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Headline", p.Title())
}

func TestPageLinks(t *testing.T) {
	p, err := Parse(samplePage, "https://example.com/blog")
	require.NoError(t, err)

	links := p.Links()
	// mailto and .png are skipped, the fragment duplicate collapses, and
	// tag links still count.
	assert.Contains(t, links, "https://example.com/blog/post-1")
	assert.Contains(t, links, "https://example.com/tag/widgets")
	for _, l := range links {
		assert.NotContains(t, l, "mailto")
		assert.NotContains(t, l, ".png")
		assert.NotContains(t, l, "#")
	}
	assert.Equal(t, len(links), len(uniqueStrings(links)))
}

func TestPageCategoriesAndWordCount(t *testing.T) {
	p, err := Parse(samplePage, "https://example.com/blog")
	require.NoError(t, err)

	assert.Equal(t, []string{"Widgets"}, p.Categories())
	assert.Greater(t, p.WordCount(), 5)
}

func TestPageText(t *testing.T) {
	p, err := Parse(samplePage, "https://example.com/blog")
	require.NoError(t, err)

	assert.Equal(t, "Widget Deep Dive", p.Text("h1"))
	assert.Empty(t, p.Text(".does-not-exist"))
}

func uniqueStrings(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
