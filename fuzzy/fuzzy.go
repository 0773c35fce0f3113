// Package fuzzy scores textual similarity with Levenshtein edit distance and
// locates match spans for highlighting. All operations work on runes, not
// bytes, so Japanese text measures correctly. Functions are pure and never
// fail; malformed or empty input degrades to a non-match.
package fuzzy

import (
	"math"
	"strings"

	"github.com/memoka/memoka-server/textnorm"
)

// Default matching gates. Both must pass for a match: the similarity
// threshold and the absolute distance ceiling are independent.
const (
	DefaultThreshold   = 0.6
	DefaultMaxDistance = 3
)

// DistanceUnmatched marks the distance of a short-circuited non-match, e.g.
// an AND group where one term failed.
const DistanceUnmatched = math.MaxInt

// Options configures a match.
type Options struct {
	// Threshold is the minimum similarity score in [0,1] for a match.
	Threshold float64
	// MaxDistance is the maximum edit distance for a match.
	MaxDistance int
	// Normalize runs both strings through the search normalizer before
	// comparing. When false, only case folding is applied.
	Normalize bool
}

// DefaultOptions returns the default matching gates with normalization on.
func DefaultOptions() Options {
	return Options{
		Threshold:   DefaultThreshold,
		MaxDistance: DefaultMaxDistance,
		Normalize:   true,
	}
}

// Result describes the outcome of a single comparison.
type Result struct {
	// MatchedText is the target text that was compared against.
	MatchedText string
	// Score is 1 - distance/max(len), clamped to [0,1].
	Score float64
	// Distance is the edit distance, DistanceUnmatched for short-circuited
	// non-matches.
	Distance int
	// Matched reports whether both gates passed.
	Matched bool
}

// Distance computes the Levenshtein edit distance between a and b using
// single-character insert, delete and substitute operations.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row DP over the (len(rb)+1) x (len(ra)+1) table.
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}

// Similarity returns 1 - Distance(a,b)/max(len(a), len(b)) in [0,1].
// Two empty strings are a perfect match.
func Similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	longest := max(la, lb)
	s := 1.0 - float64(Distance(a, b))/float64(longest)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Match compares query against target under the configured gates.
func Match(query, target string, opts Options) Result {
	q, t := prepare(query, target, opts)

	d := Distance(q, t)
	score := Similarity(q, t)

	return Result{
		MatchedText: target,
		Score:       score,
		Distance:    d,
		Matched:     score >= opts.Threshold && d <= opts.MaxDistance,
	}
}

// PartialMatch first checks for literal substring containment of the
// normalized query in the normalized target; a hit is a perfect match and
// skips edit distance entirely. Otherwise both strings are split on
// whitespace and the best-scoring word pair decides the outcome.
func PartialMatch(query, target string, opts Options) Result {
	q, t := preparePartial(query, target, opts)

	if q != "" && strings.Contains(t, q) {
		return Result{
			MatchedText: target,
			Score:       1.0,
			Distance:    0,
			Matched:     true,
		}
	}

	best := Result{MatchedText: target, Distance: DistanceUnmatched}
	for _, qw := range strings.Fields(q) {
		for _, tw := range strings.Fields(t) {
			r := Match(qw, tw, withoutNormalize(opts))
			if r.Score > best.Score {
				best.Score = r.Score
				best.Distance = r.Distance
				best.Matched = r.Matched
			}
		}
	}
	best.Matched = best.Matched && best.Score >= opts.Threshold
	return best
}

// JapaneseMatch exhaustively compares every normalization variation of the
// query against every variation of the target and keeps the best-scoring
// pair. Used when script ambiguity must be resolved without assuming a
// canonical form, e.g. a Katakana query against Hiragana content.
func JapaneseMatch(query, target string, opts Options) Result {
	best := Result{MatchedText: target, Distance: DistanceUnmatched}
	for _, qv := range textnorm.Variations(query) {
		for _, tv := range textnorm.Variations(target) {
			r := Match(qv, tv, withoutNormalize(opts))
			if r.Score > best.Score {
				best.Score = r.Score
				best.Distance = r.Distance
				best.Matched = r.Matched
			}
		}
	}
	return best
}

// MatchAll applies PartialMatch for every query term against the target and
// requires all of them to match. The first failing term short-circuits to a
// non-match. The aggregate score is the mean of the per-term scores.
func MatchAll(queries []string, target string, opts Options) Result {
	if len(queries) == 0 {
		return Result{MatchedText: target, Distance: DistanceUnmatched}
	}
	var sum float64
	worstDistance := 0
	for _, q := range queries {
		r := PartialMatch(q, target, opts)
		if !r.Matched {
			return Result{
				MatchedText: target,
				Distance:    DistanceUnmatched,
				Matched:     false,
			}
		}
		sum += r.Score
		if r.Distance > worstDistance {
			worstDistance = r.Distance
		}
	}
	return Result{
		MatchedText: target,
		Score:       sum / float64(len(queries)),
		Distance:    worstDistance,
		Matched:     true,
	}
}

// MatchAny applies PartialMatch for every query term against the target and
// succeeds if at least one matches, keeping the best per-term score.
func MatchAny(queries []string, target string, opts Options) Result {
	best := Result{MatchedText: target, Distance: DistanceUnmatched}
	for _, q := range queries {
		r := PartialMatch(q, target, opts)
		if r.Matched && r.Score > best.Score {
			best = r
		}
	}
	return best
}

func prepare(query, target string, opts Options) (string, string) {
	if opts.Normalize {
		return textnorm.NormalizeForSearch(query), textnorm.NormalizeForSearch(target)
	}
	return strings.ToLower(query), strings.ToLower(target)
}

func preparePartial(query, target string, opts Options) (string, string) {
	if opts.Normalize {
		return textnorm.NormalizeForPartialMatch(query), textnorm.NormalizeForPartialMatch(target)
	}
	return strings.ToLower(query), strings.ToLower(target)
}

// withoutNormalize returns opts with normalization disabled, for inner
// comparisons on strings that are already normalized.
func withoutNormalize(opts Options) Options {
	opts.Normalize = false
	return opts
}
