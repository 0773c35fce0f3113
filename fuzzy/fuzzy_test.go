package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"abc", "xyz", 3},
		{"こんにちは", "こんばんは", 2},
		{"カタカナ", "かたかな", 4},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Distance(tc.a, tc.b), "Distance(%q, %q)", tc.a, tc.b)
	}
}

func TestDistanceProperties(t *testing.T) {
	inputs := []string{"", "a", "memo", "メモ帳", "machine learning", "今日の天気"}
	for _, a := range inputs {
		assert.Zero(t, Distance(a, a), "identity %q", a)
		for _, b := range inputs {
			assert.Equal(t, Distance(a, b), Distance(b, a), "symmetry %q %q", a, b)
		}
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("memo", "memo"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))

	inputs := []string{"", "a", "abcdef", "メモ", "漢字とかな"}
	for _, a := range inputs {
		for _, b := range inputs {
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestMatchGates(t *testing.T) {
	opts := DefaultOptions()

	// Identical: trivially matched.
	r := Match("memo", "memo", opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 0, r.Distance)
	assert.Equal(t, 1.0, r.Score)

	// One edit in a 7-rune word passes both gates.
	r = Match("searche", "search", opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 1, r.Distance)

	// Similarity above threshold but distance above ceiling: no match.
	// 4 edits in a 12-rune string gives similarity 0.66.
	r = Match("abcdefghijkl", "abcdefgh9999", opts)
	assert.False(t, r.Matched)
	assert.Greater(t, r.Score, opts.Threshold)
	assert.Greater(t, r.Distance, opts.MaxDistance)

	// Distance within ceiling but similarity below threshold: no match.
	r = Match("ab", "xy", opts)
	assert.False(t, r.Matched)
	assert.LessOrEqual(t, r.Distance, opts.MaxDistance)
	assert.Less(t, r.Score, opts.Threshold)
}

func TestMatchCaseAndScript(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, Match("MEMO", "memo", opts).Matched)
	// Kana unification: Katakana query matches Hiragana target exactly.
	r := Match("カタカナ", "かたかな", opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 0, r.Distance)
}

func TestPartialMatchContainment(t *testing.T) {
	opts := DefaultOptions()

	r := PartialMatch("machine", "I study machine learning", opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 1.0, r.Score)
	assert.Equal(t, 0, r.Distance)

	// Containment is checked on normalized forms.
	r = PartialMatch("ＭＡＣＨＩＮＥ", "i study machine learning", opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 1.0, r.Score)

	// Japanese containment.
	r = PartialMatch("機械学習", "機械学習について学んだ", opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 1.0, r.Score)
}

func TestPartialMatchWordFallback(t *testing.T) {
	opts := DefaultOptions()

	// "learnin" is not contained, but is one edit from "learning".
	r := PartialMatch("learnin machines", "deep learning models", opts)
	assert.True(t, r.Matched)
	assert.Less(t, r.Score, 1.0)

	r = PartialMatch("zzzzz", "deep learning models", opts)
	assert.False(t, r.Matched)
}

func TestJapaneseMatch(t *testing.T) {
	opts := DefaultOptions()

	// Katakana query against Hiragana target resolves via variations.
	r := JapaneseMatch("メモチョウ", "めもちょう", opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 1.0, r.Score)

	r = JapaneseMatch("abc", "xyz", opts)
	assert.False(t, r.Matched)
}

func TestMatchAll(t *testing.T) {
	opts := DefaultOptions()
	target := "machine learning on memo content"

	r := MatchAll([]string{"machine", "memo"}, target, opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 1.0, r.Score)

	// One failing term short-circuits the whole group.
	r = MatchAll([]string{"machine", "zzzzz"}, target, opts)
	assert.False(t, r.Matched)
	assert.Equal(t, DistanceUnmatched, r.Distance)

	r = MatchAll(nil, target, opts)
	assert.False(t, r.Matched)
}

func TestMatchAny(t *testing.T) {
	opts := DefaultOptions()
	target := "machine learning on memo content"

	r := MatchAny([]string{"zzzzz", "memo"}, target, opts)
	assert.True(t, r.Matched)
	assert.Equal(t, 1.0, r.Score)

	r = MatchAny([]string{"zzzzz", "qqqqq"}, target, opts)
	assert.False(t, r.Matched)
}
