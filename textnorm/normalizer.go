// Package textnorm canonicalizes text for comparison purposes: case folding,
// fullwidth/halfwidth unification, Hiragana/Katakana unification and symbol
// handling. All operations are pure, never fail and identity-map characters
// they do not know about. The original string is kept by callers for display
// and highlight offsets; every mapping here is one rune to one rune so that
// rune offsets into a normalized string remain valid in the original, as long
// as whitespace collapsing is not applied.
package textnorm

import (
	"strings"
)

// KanaTarget selects the canonical kana script for unification.
type KanaTarget int

const (
	// KanaToHiragana converts Katakana to Hiragana.
	KanaToHiragana KanaTarget = iota
	// KanaToKatakana converts Hiragana to Katakana.
	KanaToKatakana
)

// Options toggles the individual normalization steps. Steps always run in a
// fixed order: case folding, width unification, kana unification, symbol
// handling, whitespace collapsing. Width folding must precede kana
// unification so the kana blocks only ever see fullwidth input.
type Options struct {
	// LowerCase folds the text to lower case.
	LowerCase bool
	// UnifyWidth folds fullwidth Latin letters, digits and punctuation to
	// their halfwidth forms.
	UnifyWidth bool
	// UnifyKana converts kana to the script selected by Kana.
	UnifyKana bool
	Kana      KanaTarget
	// StripSymbols replaces every character that is not a word character,
	// whitespace, kana or a CJK ideograph with a space.
	StripSymbols bool
	// MapSymbols rewrites fullwidth punctuation to ASCII equivalents.
	// Ignored when StripSymbols is set.
	MapSymbols bool
	// CollapseWhitespace folds runs of whitespace into a single space and
	// trims the ends. This is the only step that changes rune offsets.
	CollapseWhitespace bool
}

// ToKatakana converts Hiragana characters to Katakana. Characters outside
// the Hiragana block pass through unchanged.
func ToKatakana(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= hiraganaFirst && r <= hiraganaLast {
			return r + kanaOffset
		}
		return r
	}, text)
}

// ToHiragana converts Katakana characters to Hiragana. Characters outside
// the convertible Katakana range pass through unchanged; this includes the
// prolonged sound mark ー, which has no Hiragana counterpart.
func ToHiragana(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= katakanaFirst && r <= katakanaLast {
			return r - kanaOffset
		}
		return r
	}, text)
}

// FullwidthToHalfwidth folds fullwidth Latin letters, digits and punctuation
// to their ASCII forms.
func FullwidthToHalfwidth(text string) string {
	return strings.Map(func(r rune) rune {
		if h, ok := fullwidthToHalfwidth[r]; ok {
			return h
		}
		return r
	}, text)
}

// HalfwidthToFullwidth is the inverse of FullwidthToHalfwidth.
func HalfwidthToFullwidth(text string) string {
	return strings.Map(func(r rune) rune {
		if f, ok := halfwidthToFullwidth[r]; ok {
			return f
		}
		return r
	}, text)
}

// RemoveSymbols replaces every character that is not a word character,
// whitespace, Hiragana, Katakana or a CJK ideograph with a single space.
func RemoveSymbols(text string) string {
	return strings.Map(func(r rune) rune {
		if isWordChar(r) || isSpace(r) || isHiragana(r) || isKatakana(r) || isCJKIdeograph(r) {
			return r
		}
		return ' '
	}, text)
}

// NormalizeSymbols maps a fixed set of fullwidth punctuation marks to their
// ASCII equivalents.
func NormalizeSymbols(text string) string {
	return strings.Map(func(r rune) rune {
		if a, ok := symbolTable[r]; ok {
			return a
		}
		return r
	}, text)
}

// Normalize applies the steps enabled in opts, in fixed order.
func Normalize(text string, opts Options) string {
	if text == "" {
		return ""
	}
	if opts.LowerCase {
		text = toLower(text)
	}
	if opts.UnifyWidth {
		text = FullwidthToHalfwidth(text)
	}
	if opts.UnifyKana {
		if opts.Kana == KanaToKatakana {
			text = ToKatakana(text)
		} else {
			text = ToHiragana(text)
		}
	}
	if opts.StripSymbols {
		text = RemoveSymbols(text)
	} else if opts.MapSymbols {
		text = NormalizeSymbols(text)
	}
	if opts.CollapseWhitespace {
		text = CollapseWhitespace(text)
	}
	return text
}

// NormalizeForSearch is the default preset used for all search comparisons:
// lower case, halfwidth, Hiragana, symbols stripped, whitespace collapsed.
// It is idempotent.
func NormalizeForSearch(text string) string {
	return Normalize(text, Options{
		LowerCase:          true,
		UnifyWidth:         true,
		UnifyKana:          true,
		Kana:               KanaToHiragana,
		StripSymbols:       true,
		CollapseWhitespace: true,
	})
}

// NormalizeForPartialMatch is the search preset with symbols preserved, so
// substring containment checks keep symbols as word boundaries instead of
// conflating "foo-bar" with "foobar".
func NormalizeForPartialMatch(text string) string {
	return Normalize(text, Options{
		LowerCase:          true,
		UnifyWidth:         true,
		UnifyKana:          true,
		Kana:               KanaToHiragana,
		MapSymbols:         true,
		CollapseWhitespace: true,
	})
}

// NormalizeAligned is the search preset without whitespace collapsing. Every
// remaining step maps one rune to one rune, so rune offsets into the result
// are valid offsets into the input. Used for highlight span computation.
func NormalizeAligned(text string) string {
	return Normalize(text, Options{
		LowerCase:    true,
		UnifyWidth:   true,
		UnifyKana:    true,
		Kana:         KanaToHiragana,
		StripSymbols: true,
	})
}

// Variations returns the distinct representations of text across case, width
// and kana conversions, plus the original and the search-normalized form.
// Used to brute-force match across scripts when no canonical form can be
// assumed.
func Variations(text string) []string {
	candidates := []string{
		text,
		NormalizeForSearch(text),
		ToHiragana(text),
		ToKatakana(text),
		strings.ToLower(text),
		strings.ToUpper(text),
		FullwidthToHalfwidth(text),
		HalfwidthToFullwidth(text),
	}
	seen := make(map[string]bool, len(candidates))
	variations := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			variations = append(variations, c)
		}
	}
	return variations
}

// CollapseWhitespace folds any run of whitespace into a single space and
// trims leading and trailing whitespace.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// toLower folds to lower case rune by rune. strings.Map guarantees a
// one-to-one rune mapping, which keeps offsets aligned; strings.ToLower
// would as well, but the intent is explicit here.
func toLower(text string) string {
	return strings.Map(toLowerRune, text)
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	// Non-ASCII letters with case (e.g. fullwidth Latin before width
	// folding) are handled by the width table afterwards; other scripts
	// have no case.
	if r >= 'Ａ' && r <= 'Ｚ' {
		return r + ('ａ' - 'Ａ')
	}
	return r
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', '　':
		return true
	}
	return false
}
