package report

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"scout/internal/search"
)

// linkParser recognizes inline links, <autolinks> and bare URLs.
var linkParser = goldmark.New(goldmark.WithExtensions(extension.Linkify)).Parser()

// UnverifiedURLs lists the URLs in report that do not appear as a verified source of
// any result, in order of first appearance and without duplicates.
func UnverifiedURLs(report string, results []search.Result) []string {
	verified := make(map[string]bool)
	for _, r := range results {
		for _, s := range r.Sources {
			verified[normalizeURL(s.URL)] = true
		}
	}

	var unverified []string
	seen := make(map[string]bool)
	for _, u := range reportURLs(report) {
		key := normalizeURL(u)
		if verified[key] || seen[key] {
			continue
		}
		seen[key] = true
		unverified = append(unverified, u)
	}
	return unverified
}

// reportURLs returns the http(s) link destinations of the Markdown document in order.
// URLs inside code spans and code blocks are not links and are skipped.
func reportURLs(report string) []string {
	source := []byte(report)
	doc := linkParser.Parse(text.NewReader(source))

	var urls []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var dest string
		switch link := n.(type) {
		case *ast.Link:
			dest = string(link.Destination)
		case *ast.AutoLink:
			if link.AutoLinkType != ast.AutoLinkURL {
				return ast.WalkContinue, nil
			}
			dest = string(link.URL(source))
		default:
			return ast.WalkContinue, nil
		}
		if strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://") {
			urls = append(urls, dest)
		}
		return ast.WalkContinue, nil
	})
	return urls
}

// AppendUnverified adds a section listing urls to the report. No urls, no change.
func AppendUnverified(report string, urls []string) string {
	if len(urls) == 0 {
		return report
	}
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(report, "\n"))
	sb.WriteString("\n\n## Niet-geverifieerde URLs\n\n")
	sb.WriteString("De volgende URLs staan in het rapport maar kwamen niet voor in de geverifieerde bronnen:\n\n")
	for _, u := range urls {
		sb.WriteString("- ")
		sb.WriteString(u)
		sb.WriteString("\n")
	}
	return sb.String()
}

func normalizeURL(u string) string {
	return strings.TrimRight(u, "/")
}
