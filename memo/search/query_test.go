package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryFieldClauses(t *testing.T) {
	parsed := ParseQuery("tag:AI category:技術 foo")

	assert.Equal(t, []FieldClause{
		{Field: "tag", Value: "AI"},
		{Field: "category", Value: "技術"},
	}, parsed.FieldClauses)
	assert.Equal(t, []string{"foo"}, parsed.Terms)
	assert.Empty(t, parsed.Operators)
	assert.Empty(t, parsed.Phrases)

	// Convenience accumulators.
	assert.Equal(t, []string{"AI"}, parsed.Tags)
	assert.Equal(t, []string{"技術"}, parsed.Categories)
}

func TestParseQueryOperators(t *testing.T) {
	parsed := ParseQuery("cats AND dogs OR birds NOT fish")

	assert.Equal(t, []string{"cats", "dogs", "birds", "fish"}, parsed.Terms)
	assert.Len(t, parsed.Operators, 3)
	assert.Equal(t, OpAnd, parsed.Operators[0].Op)
	assert.Equal(t, OpOr, parsed.Operators[1].Op)
	assert.Equal(t, OpNot, parsed.Operators[2].Op)

	// Positions are rune offsets of the keyword tokens.
	assert.Equal(t, 5, parsed.Operators[0].Position)
}

func TestParseQueryBilingualOperators(t *testing.T) {
	parsed := ParseQuery("猫 かつ 犬 または 鳥 除く 魚")
	assert.Len(t, parsed.Operators, 3)
	assert.Equal(t, OpAnd, parsed.Operators[0].Op)
	assert.Equal(t, OpOr, parsed.Operators[1].Op)
	assert.Equal(t, OpNot, parsed.Operators[2].Op)
	assert.Equal(t, []string{"猫", "犬", "鳥", "魚"}, parsed.Terms)

	parsed = ParseQuery("a ＋ b ｜ c － d")
	assert.Len(t, parsed.Operators, 3)
}

func TestParseQueryOperatorCaseInsensitive(t *testing.T) {
	parsed := ParseQuery("a and b Or c noT d")
	assert.Len(t, parsed.Operators, 3)
}

func TestParseQueryQuotedPhrases(t *testing.T) {
	parsed := ParseQuery(`"machine learning" notes "deep dive"`)

	assert.Equal(t, []string{"machine learning", "deep dive"}, parsed.Phrases)
	assert.Equal(t, []string{"notes"}, parsed.Terms)
}

func TestParseQueryUnterminatedQuote(t *testing.T) {
	parsed := ParseQuery(`"machine learning notes`)
	assert.Equal(t, []string{"machine learning notes"}, parsed.Phrases)
}

func TestParseQueryFieldClauseNeverOperator(t *testing.T) {
	// A field clause whose value is an operator keyword stays a field
	// clause; classification precedence is structural.
	parsed := ParseQuery("tag:AND foo")
	assert.Equal(t, []FieldClause{{Field: "tag", Value: "AND"}}, parsed.FieldClauses)
	assert.Empty(t, parsed.Operators)
}

func TestParseQueryUnknownFieldIsTerm(t *testing.T) {
	parsed := ParseQuery("url:http foo")
	assert.Empty(t, parsed.FieldClauses)
	assert.Equal(t, []string{"url:http", "foo"}, parsed.Terms)
}

func TestParseQueryFullwidthColon(t *testing.T) {
	parsed := ParseQuery("tag：AI")
	assert.Equal(t, []FieldClause{{Field: "tag", Value: "AI"}}, parsed.FieldClauses)
}

func TestParseQueryEmpty(t *testing.T) {
	parsed := ParseQuery("")
	assert.True(t, parsed.IsPlain())
	assert.Empty(t, parsed.Terms)

	parsed = ParseQuery("   ")
	assert.Empty(t, parsed.Terms)
}

func TestComplexSearchFieldFilter(t *testing.T) {
	results := ComplexSearch(testDocs(), "tag:AI category:技術", DefaultTextOptions())

	assert.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Document.ID)
	assert.Equal(t, ModeComplex, results[0].Mode)
}

func TestComplexSearchFieldFilterPlusTerm(t *testing.T) {
	// The field filter is conjunctive; the free term must also hit.
	results := ComplexSearch(testDocs(), "tag:AI 機械学習", DefaultTextOptions())
	assert.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Document.ID)

	results = ComplexSearch(testDocs(), "tag:AI 晴れ", DefaultTextOptions())
	assert.Empty(t, results)
}

func TestComplexSearchUnmatchedClauseExcludes(t *testing.T) {
	results := ComplexSearch(testDocs(), "tag:nonexistent 機械学習", DefaultTextOptions())
	assert.Empty(t, results)
}

func TestComplexSearchPlainFallback(t *testing.T) {
	// No clauses, no operators: identical to the plain text search.
	complexResults := ComplexSearch(testDocs(), "machine learning", DefaultTextOptions())
	textResults := TextSearch(testDocs(), "machine learning", DefaultTextOptions())

	assert.Equal(t, len(textResults), len(complexResults))
	for i := range textResults {
		assert.Equal(t, textResults[i].Document.ID, complexResults[i].Document.ID)
		assert.Equal(t, textResults[i].RankScore, complexResults[i].RankScore)
	}
}

func TestComplexSearchQuotedPhrase(t *testing.T) {
	results := ComplexSearch(testDocs(), `"machine learning"`, DefaultTextOptions())
	assert.Len(t, results, 1)
	assert.Equal(t, "3", results[0].Document.ID)

	// Phrases are atomic: scrambled word order does not match.
	results = ComplexSearch(testDocs(), `"learning machine"`, DefaultTextOptions())
	assert.Empty(t, results)
}

func TestComplexSearchEmptyQuery(t *testing.T) {
	assert.Empty(t, ComplexSearch(testDocs(), "", DefaultTextOptions()))
}
