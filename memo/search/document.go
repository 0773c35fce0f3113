// Package search implements the multi-mode memo search engine: ranked
// weighted-field text search, tag search, compound field/boolean queries,
// autocomplete suggestions and hybrid lexical/semantic result merging.
// It consumes the textnorm and fuzzy packages and holds no state; every
// entry point is a pure function over the documents it is handed.
package search

import "github.com/memoka/memoka-server/fuzzy"

// Document is the searchable projection of a memo. Text fields are raw, not
// pre-normalized; the engine normalizes on every comparison.
type Document struct {
	ID string
	// Content is the primary free text body.
	Content string
	// Tags are short free-form labels.
	Tags []string
	// Category is an optional single label.
	Category string
	// Summary is an optional short text.
	Summary string
	// Keywords are curated short labels, more precise than tags.
	Keywords []string
}

// Mode identifies which search entry point produced a result.
type Mode string

const (
	ModeText    Mode = "text"
	ModeTag     Mode = "tag"
	ModeComplex Mode = "complex"
	ModeHybrid  Mode = "hybrid"
)

// Result is a ranked search hit. Created per query execution and discarded
// after rendering.
type Result struct {
	Document Document `json:"document"`
	// RankScore orders the result set, higher first.
	RankScore float64 `json:"rankScore"`
	// MatchedFields names the document fields that contributed.
	MatchedFields []string `json:"matchedFields"`
	Mode          Mode     `json:"searchMode"`
}

// FieldHighlight carries the match spans for one field of a result,
// computed on demand for rendering.
type FieldHighlight struct {
	Field string       `json:"field"`
	Spans []fuzzy.Span `json:"positions"`
}

// Highlights computes merged highlight spans for every matched field of a
// result against the query that produced it.
func Highlights(doc Document, query string, opts fuzzy.Options) []FieldHighlight {
	var highlights []FieldHighlight

	appendField := func(field, text string) {
		if text == "" {
			return
		}
		spans := fuzzy.MergeSpans(fuzzy.Highlight(query, text, opts))
		if len(spans) > 0 {
			highlights = append(highlights, FieldHighlight{Field: field, Spans: spans})
		}
	}

	appendField(fieldContent, doc.Content)
	appendField(fieldSummary, doc.Summary)
	appendField(fieldCategory, doc.Category)
	for _, tag := range doc.Tags {
		appendField(fieldTags, tag)
	}
	for _, kw := range doc.Keywords {
		appendField(fieldKeywords, kw)
	}
	return highlights
}
