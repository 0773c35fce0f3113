package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKanaConversion(t *testing.T) {
	assert.Equal(t, "カタカナ", ToKatakana("かたかな"))
	assert.Equal(t, "ひらがな", ToHiragana("ヒラガナ"))

	// Mixed input: only kana shift, everything else passes through.
	assert.Equal(t, "ミックスmixed漢字123", ToKatakana("みっくすmixed漢字123"))
	assert.Equal(t, "みっくすmixed漢字123", ToHiragana("ミックスmixed漢字123"))

	// The prolonged sound mark has no Hiragana form and must survive.
	assert.Equal(t, "こーひー", ToHiragana("コーヒー"))
}

func TestKanaRoundTrip(t *testing.T) {
	inputs := []string{
		"こんにちは",
		"コンニチハ",
		"hello こんにちは カタカナ 漢字",
		"",
	}
	for _, s := range inputs {
		assert.Equal(t, ToHiragana(s), ToHiragana(ToKatakana(s)), "input %q", s)
	}
}

func TestWidthConversion(t *testing.T) {
	assert.Equal(t, "ABCabc012!?", FullwidthToHalfwidth("ＡＢＣａｂｃ０１２！？"))
	assert.Equal(t, "ＡＢＣａｂｃ０１２！？", HalfwidthToFullwidth("ABCabc012!?"))

	// Ideographic space folds to a plain space.
	assert.Equal(t, "a b", FullwidthToHalfwidth("a　b"))

	// Kana and ideographs are untouched.
	assert.Equal(t, "カナ漢字", FullwidthToHalfwidth("カナ漢字"))
}

func TestRemoveSymbols(t *testing.T) {
	assert.Equal(t, "foo bar", RemoveSymbols("foo-bar"))
	assert.Equal(t, "メモ アプリ", RemoveSymbols("メモ&アプリ"))
	// Word characters, whitespace, kana and ideographs survive.
	assert.Equal(t, "abc_1 かな カナ 漢字", RemoveSymbols("abc_1 かな カナ 漢字"))
	assert.Equal(t, "", RemoveSymbols(""))
}

func TestNormalizeSymbols(t *testing.T) {
	assert.Equal(t, "!?()", NormalizeSymbols("！？（）"))
	assert.Equal(t, "a,b.", NormalizeSymbols("a、b。"))
	// Unknown characters are identity-mapped.
	assert.Equal(t, "★", NormalizeSymbols("★"))
}

func TestNormalizeForSearch(t *testing.T) {
	assert.Equal(t, "ましん らーにんぐ", NormalizeForSearch("マシン・ラーニング"))
	assert.Equal(t, "abc123", NormalizeForSearch("ＡＢＣ１２３"))
	assert.Equal(t, "foo bar baz", NormalizeForSearch("  Foo\t bar---baz "))
	assert.Equal(t, "", NormalizeForSearch(""))
}

func TestNormalizeForSearchIdempotent(t *testing.T) {
	inputs := []string{
		"マシン・ラーニング",
		"ＡＢＣ１２３！",
		"Hello, World!  こんにちは。",
		"tag:AI category:技術",
	}
	for _, s := range inputs {
		once := NormalizeForSearch(s)
		assert.Equal(t, once, NormalizeForSearch(once), "input %q", s)
	}
}

func TestNormalizeForPartialMatchKeepsSymbols(t *testing.T) {
	assert.Equal(t, "foo-bar", NormalizeForPartialMatch("foo-bar"))
	assert.NotEqual(t, NormalizeForPartialMatch("foo-bar"), NormalizeForPartialMatch("foobar"))
	// Fullwidth punctuation is still mapped to ASCII.
	assert.Equal(t, "foo!", NormalizeForPartialMatch("Ｆｏｏ！"))
}

func TestNormalizeAlignedPreservesLength(t *testing.T) {
	inputs := []string{
		"Hello, World!",
		"マシン・ラーニング",
		"ＡＢＣ　ｄｅｆ！？",
		"メモ&アプリ(検索)",
	}
	for _, s := range inputs {
		normalized := NormalizeAligned(s)
		assert.Equal(t, len([]rune(s)), len([]rune(normalized)), "input %q", s)
	}
}

func TestVariations(t *testing.T) {
	vars := Variations("カタカナ")
	assert.Contains(t, vars, "カタカナ")
	assert.Contains(t, vars, "かたかな")

	vars = Variations("Memo")
	assert.Contains(t, vars, "Memo")
	assert.Contains(t, vars, "memo")
	assert.Contains(t, vars, "MEMO")

	// No duplicates.
	seen := map[string]int{}
	for _, v := range Variations("abc") {
		seen[v]++
		assert.Equal(t, 1, seen[v])
	}
}
