package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/memoka/memoka-server/fuzzy"
	"github.com/memoka/memoka-server/textnorm"
)

// SuggestionType identifies the source a suggestion came from.
type SuggestionType string

const (
	SuggestionHistory  SuggestionType = "history"
	SuggestionTag      SuggestionType = "tag"
	SuggestionContent  SuggestionType = "content"
	SuggestionCategory SuggestionType = "category"
	SuggestionKeyword  SuggestionType = "keyword"
)

// SuggestionOrder selects the final ordering of the suggestion list.
type SuggestionOrder string

const (
	OrderByScore     SuggestionOrder = "score"
	OrderByFrequency SuggestionOrder = "frequency"
	OrderAlphabetic  SuggestionOrder = "alphabetical"
	OrderByRecency   SuggestionOrder = "recency"
)

// Suggestion is one autocomplete candidate. Built transiently per keystroke
// and discarded after rendering.
type Suggestion struct {
	ID          string         `json:"id"`
	Type        SuggestionType `json:"type"`
	Text        string         `json:"text"`
	Description string         `json:"description,omitempty"`
	Score       float64        `json:"score"`
	// Frequency and LastUsed back the frequency/recency orderings.
	Frequency int       `json:"frequency,omitempty"`
	LastUsed  time.Time `json:"lastUsed,omitempty"`
}

// HistoryEntry is a previously executed search.
type HistoryEntry struct {
	Query      string
	ExecutedAt time.Time
}

// SuggestOptions configures Suggest.
type SuggestOptions struct {
	// Limit caps the suggestion list, defaultSuggestionLimit when zero.
	Limit int
	Order SuggestionOrder
	// Fuzzy options for matching sources against the query.
	Match fuzzy.Options
}

// DefaultSuggestOptions orders by score with the default fuzzy gates.
func DefaultSuggestOptions() SuggestOptions {
	return SuggestOptions{
		Limit: defaultSuggestionLimit,
		Order: OrderByScore,
		Match: fuzzy.DefaultOptions(),
	}
}

const (
	defaultSuggestionLimit = 10

	// Empty-query view sizes.
	recentHistoryCount = 5
	popularTagCount    = 5

	// Phrase extraction limits.
	maxPhraseSentenceWords = 10
	phraseWindowWords      = 3
	maxPhraseRunes         = 50
)

// Per-source score multipliers: history outranks tags, tags outrank
// content-derived phrases.
const (
	historyScoreFactor  = 1.0
	tagScoreFactor      = 0.95
	keywordScoreFactor  = 0.9
	categoryScoreFactor = 0.85
	contentScoreFactor  = 0.7
)

// Suggest builds a ranked, deduplicated autocomplete list from five
// sources: search history, tags, categories, keywords and content-derived
// phrases. Each source is fuzzy-matched independently; a failed or empty
// source contributes nothing instead of aborting the aggregate.
//
// An empty query returns the fixed "recent and popular" view: the last
// history entries at full score plus the most frequent tags.
func Suggest(query string, history []HistoryEntry, docs []Document, opts SuggestOptions) []Suggestion {
	if strings.TrimSpace(query) == "" {
		return emptyQuerySuggestions(history, docs, opts)
	}

	var candidates []Suggestion
	candidates = append(candidates, historySuggestions(query, history, opts)...)
	candidates = append(candidates, labelSuggestions(query, docs, opts)...)
	candidates = append(candidates, contentSuggestions(query, docs, opts)...)

	return finishSuggestions(candidates, opts)
}

// emptyQuerySuggestions is the simpler no-input path: recent history plus
// popular tags.
func emptyQuerySuggestions(history []HistoryEntry, docs []Document, opts SuggestOptions) []Suggestion {
	var candidates []Suggestion

	recent := history
	if len(recent) > recentHistoryCount {
		recent = recent[:recentHistoryCount]
	}
	for i, h := range recent {
		candidates = append(candidates, Suggestion{
			ID:       fmt.Sprintf("history-%d", i),
			Type:     SuggestionHistory,
			Text:     h.Query,
			Score:    1.0,
			LastUsed: h.ExecutedAt,
		})
	}

	for _, tf := range topTags(docs, popularTagCount) {
		candidates = append(candidates, Suggestion{
			ID:          "tag-" + tf.tag,
			Type:        SuggestionTag,
			Text:        tf.tag,
			Description: fmt.Sprintf("%d memos", tf.count),
			Score:       float64(tf.count) / 10,
			Frequency:   tf.count,
		})
	}

	return finishSuggestions(candidates, opts)
}

func historySuggestions(query string, history []HistoryEntry, opts SuggestOptions) []Suggestion {
	var out []Suggestion
	for i, h := range history {
		r := fuzzy.PartialMatch(query, h.Query, opts.Match)
		if !r.Matched {
			continue
		}
		out = append(out, Suggestion{
			ID:       fmt.Sprintf("history-%d", i),
			Type:     SuggestionHistory,
			Text:     h.Query,
			Score:    r.Score * historyScoreFactor,
			LastUsed: h.ExecutedAt,
		})
	}
	return out
}

// labelSuggestions matches the query against tags, categories and keywords
// across all documents, tracking per-label frequency.
func labelSuggestions(query string, docs []Document, opts SuggestOptions) []Suggestion {
	type labelKey struct {
		kind SuggestionType
		text string
	}
	freq := map[labelKey]int{}
	score := map[labelKey]float64{}

	consider := func(kind SuggestionType, text string, factor float64) {
		if text == "" {
			return
		}
		key := labelKey{kind: kind, text: text}
		if _, seen := freq[key]; !seen {
			r := fuzzy.PartialMatch(query, text, opts.Match)
			if !r.Matched {
				score[key] = -1
			} else {
				score[key] = r.Score * factor
			}
		}
		freq[key]++
	}

	for _, doc := range docs {
		for _, tag := range doc.Tags {
			consider(SuggestionTag, tag, tagScoreFactor)
		}
		consider(SuggestionCategory, doc.Category, categoryScoreFactor)
		for _, kw := range doc.Keywords {
			consider(SuggestionKeyword, kw, keywordScoreFactor)
		}
	}

	var out []Suggestion
	for key, s := range score {
		if s < 0 {
			continue
		}
		out = append(out, Suggestion{
			ID:        string(key.kind) + "-" + key.text,
			Type:      key.kind,
			Text:      key.text,
			Score:     s,
			Frequency: freq[key],
		})
	}
	return out
}

// contentSuggestions extracts short query-relevant phrases from memo
// bodies: sentences containing the normalized query verbatim when they are
// short enough, plus sliding word windows per sentence.
func contentSuggestions(query string, docs []Document, opts SuggestOptions) []Suggestion {
	normalizedQuery := textnorm.NormalizeForSearch(query)
	if normalizedQuery == "" {
		return nil
	}
	queryRunes := len([]rune(query))

	var out []Suggestion
	emit := func(docID, phrase string) {
		out = append(out, Suggestion{
			ID:          "content-" + docID + "-" + phrase,
			Type:        SuggestionContent,
			Text:        phrase,
			Description: "from memo",
			Score:       contentScoreFactor,
		})
	}

	for _, doc := range docs {
		for _, sentence := range splitSentences(doc.Content) {
			words := strings.Fields(sentence)

			if strings.Contains(textnorm.NormalizeForSearch(sentence), normalizedQuery) &&
				len(words) <= maxPhraseSentenceWords {
				emit(doc.ID, sentence)
			}

			// Sliding word windows surface short snippets without
			// returning whole paragraphs.
			for i := 0; i+phraseWindowWords <= len(words); i++ {
				window := strings.Join(words[i:i+phraseWindowWords], " ")
				windowRunes := len([]rune(window))
				if windowRunes <= queryRunes || windowRunes >= maxPhraseRunes {
					continue
				}
				if strings.Contains(textnorm.NormalizeForSearch(window), normalizedQuery) {
					emit(doc.ID, window)
				}
			}
		}
	}
	return out
}

// splitSentences splits text into sentences on Japanese and Latin sentence
// terminators and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		switch r {
		case '。', '！', '？', '．', '.', '!', '?', '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return sentences
}

type tagFrequency struct {
	tag   string
	count int
}

// topTags returns the most frequent tags across docs, highest first.
func topTags(docs []Document, limit int) []tagFrequency {
	counts := map[string]int{}
	for _, doc := range docs {
		for _, tag := range doc.Tags {
			if tag != "" {
				counts[tag]++
			}
		}
	}

	freqs := make([]tagFrequency, 0, len(counts))
	for tag, count := range counts {
		freqs = append(freqs, tagFrequency{tag: tag, count: count})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].count != freqs[j].count {
			return freqs[i].count > freqs[j].count
		}
		return freqs[i].tag < freqs[j].tag
	})

	if len(freqs) > limit {
		freqs = freqs[:limit]
	}
	return freqs
}

// finishSuggestions deduplicates by display text keeping the highest score,
// orders per opts and truncates.
func finishSuggestions(candidates []Suggestion, opts SuggestOptions) []Suggestion {
	byText := map[string]Suggestion{}
	for _, c := range candidates {
		if existing, ok := byText[c.Text]; !ok || c.Score > existing.Score {
			byText[c.Text] = c
		}
	}

	out := make([]Suggestion, 0, len(byText))
	for _, s := range byText {
		out = append(out, s)
	}

	switch opts.Order {
	case OrderByFrequency:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Frequency != out[j].Frequency {
				return out[i].Frequency > out[j].Frequency
			}
			return out[i].Score > out[j].Score
		})
	case OrderAlphabetic:
		sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	case OrderByRecency:
		sort.Slice(out, func(i, j int) bool {
			if !out[i].LastUsed.Equal(out[j].LastUsed) {
				return out[i].LastUsed.After(out[j].LastUsed)
			}
			return out[i].Score > out[j].Score
		})
	default: // OrderByScore
		sort.Slice(out, func(i, j int) bool {
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
			return out[i].Text < out[j].Text
		})
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
