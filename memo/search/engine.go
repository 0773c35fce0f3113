package search

import (
	"sort"
	"strings"

	"github.com/memoka/memoka-server/fuzzy"
	"github.com/memoka/memoka-server/textnorm"
)

// Relevance weights per document field. Keyword matches outweigh tag matches
// because keywords are curated by the analyzer, tags are free-form.
const (
	weightContent  = 1.0
	weightTags     = 0.8
	weightCategory = 0.6
	weightSummary  = 0.7
	weightKeywords = 0.9
)

// Field names as used in MatchedFields, highlights and field clauses.
const (
	fieldContent  = "content"
	fieldTags     = "tags"
	fieldCategory = "category"
	fieldSummary  = "summary"
	fieldKeywords = "keywords"
)

// Fraction of query words that must appear in a field for the word-overlap
// fallback to count as a match.
const wordOverlapThreshold = 0.5

// DefaultMaxResults caps the result set when TextOptions.MaxResults is zero.
const DefaultMaxResults = 20

// ScoreMode selects how per-field scores aggregate into a record score.
type ScoreMode int

const (
	// ScoreSum is the plain sum of weighted field scores.
	ScoreSum ScoreMode = iota
	// ScoreHybrid averages the sum with the best single field, rewarding
	// both breadth across fields and one strong match.
	ScoreHybrid
)

// TextOptions configures TextSearch.
type TextOptions struct {
	// Fuzzy enables the edit-distance tier of the field match cascade.
	Fuzzy bool
	// Threshold is the fuzzy similarity gate, DefaultThreshold when zero.
	Threshold float64
	// MaxResults caps the result set, DefaultMaxResults when zero.
	MaxResults int
	ScoreMode  ScoreMode
}

// DefaultTextOptions enables fuzzy matching with hybrid scoring.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Fuzzy:      true,
		Threshold:  fuzzy.DefaultThreshold,
		ScoreMode:  ScoreHybrid,
		MaxResults: DefaultMaxResults,
	}
}

// FuzzyOptions derives the fuzzy gates used by the match cascade.
func (o TextOptions) FuzzyOptions() fuzzy.Options {
	opts := fuzzy.DefaultOptions()
	if o.Threshold > 0 {
		opts.Threshold = o.Threshold
	}
	return opts
}

// fieldScore is one field's outcome of the three-tier match cascade.
type fieldScore struct {
	field  string
	weight float64
	score  float64
}

// TextSearch runs the ranked multi-field text search over docs. An empty
// query returns an empty result set. Documents with at least one matching
// field are scored, sorted descending and truncated.
func TextSearch(docs []Document, query string, opts TextOptions) []Result {
	normalizedQuery := textnorm.NormalizeForSearch(query)
	if normalizedQuery == "" {
		return []Result{}
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		if r, ok := scoreDocument(doc, normalizedQuery, opts); ok {
			r.Mode = ModeText
			results = append(results, r)
		}
	}

	sortResults(results)
	return clampResults(results, opts.MaxResults)
}

// scoreDocument evaluates every weighted field of doc against the normalized
// query and aggregates the per-field scores.
func scoreDocument(doc Document, normalizedQuery string, opts TextOptions) (Result, bool) {
	var matched []fieldScore

	record := func(field string, weight float64, text string) {
		if text == "" {
			return
		}
		if score, ok := matchField(normalizedQuery, text, opts); ok {
			matched = append(matched, fieldScore{field: field, weight: weight, score: score})
		}
	}

	record(fieldContent, weightContent, doc.Content)
	record(fieldTags, weightTags, strings.Join(doc.Tags, " "))
	record(fieldCategory, weightCategory, doc.Category)
	record(fieldSummary, weightSummary, doc.Summary)
	record(fieldKeywords, weightKeywords, strings.Join(doc.Keywords, " "))

	if len(matched) == 0 {
		return Result{}, false
	}

	var sum, best float64
	fields := make([]string, 0, len(matched))
	for _, m := range matched {
		weighted := m.weight * m.score
		sum += weighted
		if weighted > best {
			best = weighted
		}
		fields = append(fields, m.field)
	}

	score := sum
	if opts.ScoreMode == ScoreHybrid {
		score = (sum + best) / 2
	}

	return Result{
		Document:      doc,
		RankScore:     score,
		MatchedFields: fields,
	}, true
}

// matchField runs the three-tier cascade for one field, returning at the
// first success: normalized containment, fuzzy partial match, word overlap.
func matchField(normalizedQuery, fieldText string, opts TextOptions) (float64, bool) {
	normalizedField := textnorm.NormalizeForSearch(fieldText)
	if normalizedField == "" {
		return 0, false
	}

	if strings.Contains(normalizedField, normalizedQuery) {
		return 1.0, true
	}

	if opts.Fuzzy {
		if r := fuzzy.PartialMatch(normalizedQuery, normalizedField, opts.FuzzyOptions()); r.Matched {
			return r.Score, true
		}
	}

	if overlap := wordOverlap(normalizedQuery, normalizedField); overlap > wordOverlapThreshold {
		return overlap, true
	}

	return 0, false
}

// wordOverlap is the fraction of query words found as substrings of any
// field word.
func wordOverlap(normalizedQuery, normalizedField string) float64 {
	queryWords := strings.Fields(normalizedQuery)
	if len(queryWords) == 0 {
		return 0
	}
	fieldWords := strings.Fields(normalizedField)

	found := 0
	for _, qw := range queryWords {
		for _, fw := range fieldWords {
			if strings.Contains(fw, qw) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(queryWords))
}

// TagSearchMode selects the tag matching semantics.
type TagSearchMode string

const (
	// TagSearchAny matches records where at least one query tag matches.
	TagSearchAny TagSearchMode = "any"
	// TagSearchAll requires every query tag to match some record tag.
	TagSearchAll TagSearchMode = "all"
	// TagSearchExact requires every record tag to match some query tag.
	TagSearchExact TagSearchMode = "exact"
)

// TagSearch matches records by their tags. Per tag pair the cascade is
// exact equality, then substring containment, then fuzzy distance.
func TagSearch(docs []Document, tags []string, mode TagSearchMode, opts TextOptions) []Result {
	normalizedTags := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := textnorm.NormalizeForSearch(t); n != "" {
			normalizedTags = append(normalizedTags, n)
		}
	}
	if len(normalizedTags) == 0 {
		return []Result{}
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		if score, ok := matchTags(doc.Tags, normalizedTags, mode, opts); ok {
			results = append(results, Result{
				Document:      doc,
				RankScore:     score,
				MatchedFields: []string{fieldTags},
				Mode:          ModeTag,
			})
		}
	}

	sortResults(results)
	return clampResults(results, opts.MaxResults)
}

func matchTags(docTags, queryTags []string, mode TagSearchMode, opts TextOptions) (float64, bool) {
	normalizedDocTags := make([]string, 0, len(docTags))
	for _, t := range docTags {
		if n := textnorm.NormalizeForSearch(t); n != "" {
			normalizedDocTags = append(normalizedDocTags, n)
		}
	}
	if len(normalizedDocTags) == 0 {
		return 0, false
	}

	switch mode {
	case TagSearchExact:
		// Every record tag must match some query tag.
		var sum float64
		for _, dt := range normalizedDocTags {
			score, ok := bestTagScore(dt, queryTags, opts)
			if !ok {
				return 0, false
			}
			sum += score
		}
		return sum / float64(len(normalizedDocTags)), true

	case TagSearchAll:
		// Every query tag must match some record tag.
		var sum float64
		for _, qt := range queryTags {
			score, ok := bestTagScore(qt, normalizedDocTags, opts)
			if !ok {
				return 0, false
			}
			sum += score
		}
		return sum / float64(len(queryTags)), true

	default: // TagSearchAny
		var best float64
		matched := false
		for _, qt := range queryTags {
			if score, ok := bestTagScore(qt, normalizedDocTags, opts); ok {
				matched = true
				if score > best {
					best = score
				}
			}
		}
		return best, matched
	}
}

// bestTagScore matches one normalized tag against a normalized tag list:
// exact, then substring, then fuzzy.
func bestTagScore(tag string, candidates []string, opts TextOptions) (float64, bool) {
	var best float64
	matched := false
	for _, c := range candidates {
		var score float64
		switch {
		case c == tag:
			score = 1.0
		case strings.Contains(c, tag) || strings.Contains(tag, c):
			score = 0.9
		case opts.Fuzzy:
			r := fuzzy.Match(tag, c, opts.FuzzyOptions())
			if !r.Matched {
				continue
			}
			score = r.Score
		default:
			continue
		}
		matched = true
		if score > best {
			best = score
		}
	}
	return best, matched
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RankScore > results[j].RankScore
	})
}

func clampResults(results []Result, maxResults int) []Result {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
