package fuzzy

import (
	"sort"
	"strings"

	"github.com/memoka/memoka-server/textnorm"
)

// Span is a half-open rune offset range into the original text, with a
// confidence score in [0,1].
type Span struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// Exact occurrences of the whole query score higher than per-word hits.
const (
	fullMatchScore = 1.0
	wordMatchScore = 0.8
)

// Highlight locates match spans for query inside text. Two passes: every
// exact occurrence of the full normalized query first, then every occurrence
// of each individual query word, skipping word spans that overlap a span
// already recorded. Spans are returned sorted by start offset and are not
// merged; see MergeSpans.
//
// Offsets are rune offsets into the original text. The aligned normalizer
// maps one rune to one rune, so positions found in the normalized text are
// valid in the original.
func Highlight(query, text string, opts Options) []Span {
	if query == "" || text == "" {
		return nil
	}

	var q, t string
	if opts.Normalize {
		q = textnorm.CollapseWhitespace(textnorm.NormalizeAligned(query))
		t = textnorm.NormalizeAligned(text)
	} else {
		q = strings.ToLower(strings.TrimSpace(query))
		t = strings.ToLower(text)
	}
	if q == "" {
		return nil
	}

	target := []rune(t)

	var spans []Span
	for _, pos := range runeOccurrences(target, []rune(q)) {
		spans = append(spans, Span{
			Start: pos,
			End:   pos + len([]rune(q)),
			Score: fullMatchScore,
		})
	}

	for _, word := range strings.Fields(q) {
		w := []rune(word)
		for _, pos := range runeOccurrences(target, w) {
			candidate := Span{
				Start: pos,
				End:   pos + len(w),
				Score: wordMatchScore,
			}
			if !overlapsAny(spans, candidate) {
				spans = append(spans, candidate)
			}
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// MergeSpans folds overlapping and adjacent spans into one, taking the
// furthest end and the highest score. Input order does not matter. Callers
// merge before rendering; Highlight output may contain overlapping spans
// when several queries contributed.
func MergeSpans(spans []Span) []Span {
	if len(spans) <= 1 {
		return spans
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			if s.Score > last.Score {
				last.Score = s.Score
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Snippet returns a window of text around the first span, with ellipses when
// truncated, for rendering compact result previews.
func Snippet(text string, spans []Span, contextRunes int) string {
	runes := []rune(text)
	if len(spans) == 0 {
		if len(runes) <= 2*contextRunes {
			return text
		}
		return string(runes[:2*contextRunes]) + "…"
	}

	first := spans[0]
	start := max(0, first.Start-contextRunes)
	end := min(len(runes), first.End+contextRunes)

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(runes) {
		snippet += "…"
	}
	return snippet
}

// runeOccurrences returns the start offsets of every occurrence of needle in
// haystack, including overlapping ones.
func runeOccurrences(haystack, needle []rune) []int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return nil
	}
	var positions []int
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			positions = append(positions, i)
		}
	}
	return positions
}

func overlapsAny(spans []Span, s Span) bool {
	for _, existing := range spans {
		if s.Start < existing.End && s.End > existing.Start {
			return true
		}
	}
	return false
}
