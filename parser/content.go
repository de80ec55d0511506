package parser

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content.
const minContentLength = 50

// ArticleContent is the cleaned main content of an article page.
type ArticleContent struct {
	Title    string
	Byline   string
	Excerpt  string
	Markdown string
	Text     string
}

// markdownConv is goroutine-safe and reused for every conversion. The base
// plugin strips script/style/head noise, commonmark renders standard
// Markdown, and the table plugin keeps tabular data intact with minimal
// cell padding.
var markdownConv = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// ExtractArticle runs the Mozilla Readability algorithm on rawHTML and
// converts the cleaned content to Markdown. Extraction never fails hard:
// when readability chokes or finds too little text, the result carries the
// page as-is with an empty Markdown body.
func ExtractArticle(rawHTML, sourceURL string) ArticleContent {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL", "url", sourceURL, "error", err)
		return ArticleContent{Text: rawHTML}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed", "url", sourceURL, "error", err)
		return ArticleContent{Text: rawHTML}
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Debug("readability: extracted content too short",
			"url", sourceURL, "length", len(article.TextContent))
		return ArticleContent{Text: rawHTML}
	}

	markdown, err := markdownConv.ConvertString(article.Content,
		converter.WithDomain(parsedURL.Scheme+"://"+parsedURL.Host))
	if err != nil {
		slog.Warn("markdown conversion failed", "url", sourceURL, "error", err)
		markdown = ""
	}

	return ArticleContent{
		Title:    article.Title,
		Byline:   article.Byline,
		Excerpt:  article.Excerpt,
		Markdown: strings.TrimSpace(markdown),
		Text:     article.TextContent,
	}
}
