package search

import "scout/internal/llm"

// VerifiedSource is a URL the provider response itself surfaced, either as a web
// search result item or as a citation on a text block.
type VerifiedSource struct {
	URL   string
	Title string
}

// ExtractSources collects every URL surfaced by the blocks, deduplicated by URL.
// The first occurrence wins: a later duplicate keeps neither its title nor its
// position. Items without a URL are skipped. Missing data yields an empty slice.
func ExtractSources(blocks []llm.ContentBlock) []VerifiedSource {
	var sources []VerifiedSource
	seen := make(map[string]bool)

	add := func(url, title string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		sources = append(sources, VerifiedSource{URL: url, Title: title})
	}

	for _, block := range blocks {
		if block.Type == llm.BlockWebSearchResult {
			for _, hit := range block.Results {
				add(hit.URL, hit.Title)
			}
		}
		for _, c := range block.Citations {
			add(c.URL, c.Title)
		}
	}
	return sources
}
