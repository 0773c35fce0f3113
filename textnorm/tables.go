package textnorm

// Character tables used by the normalizer. All of these are closed maps:
// characters without an entry pass through unchanged.

// fullwidthToHalfwidth maps fullwidth Latin letters, digits and ASCII
// punctuation (U+FF01..U+FF5E) plus the ideographic space to their
// halfwidth equivalents.
var fullwidthToHalfwidth = buildWidthTable()

// halfwidthToFullwidth is the inverse of fullwidthToHalfwidth.
var halfwidthToFullwidth = invertWidthTable(fullwidthToHalfwidth)

func buildWidthTable() map[rune]rune {
	m := make(map[rune]rune, 96)
	// U+FF01 (！) through U+FF5E (～) mirror ASCII 0x21 through 0x7E.
	for r := rune(0xFF01); r <= 0xFF5E; r++ {
		m[r] = r - 0xFEE0
	}
	// Ideographic space.
	m['　'] = ' '
	return m
}

func invertWidthTable(src map[rune]rune) map[rune]rune {
	m := make(map[rune]rune, len(src))
	for k, v := range src {
		m[v] = k
	}
	return m
}

// symbolTable maps common fullwidth and CJK punctuation marks to ASCII
// equivalents. Used by NormalizeSymbols; unrelated to width folding because
// several of these (、。「」 etc.) live outside the fullwidth forms block.
var symbolTable = map[rune]rune{
	'！': '!',
	'？': '?',
	'（': '(',
	'）': ')',
	'［': '[',
	'］': ']',
	'｛': '{',
	'｝': '}',
	'，': ',',
	'、': ',',
	'。': '.',
	'．': '.',
	'：': ':',
	'；': ';',
	'｜': '|',
	'＋': '+',
	'－': '-',
	'＊': '*',
	'／': '/',
	'＝': '=',
	'＆': '&',
	'％': '%',
	'＃': '#',
	'＠': '@',
	'「': '"',
	'」': '"',
	'『': '"',
	'』': '"',
	'〜': '~',
	'～': '~',
	'　': ' ',
}

// Unicode block boundaries used for script detection.
const (
	hiraganaFirst = 'ぁ' // ぁ
	hiraganaLast  = 'ゖ' // ゖ
	katakanaFirst = 'ァ' // ァ
	katakanaLast  = 'ヶ' // ヶ

	// Offset between the Hiragana and Katakana blocks.
	kanaOffset = 0x60
)

func isHiragana(r rune) bool {
	return r >= hiraganaFirst && r <= hiraganaLast
}

func isKatakana(r rune) bool {
	// The prolonged sound mark ー counts as Katakana; the middle dot ・
	// does not, it is a separator and gets stripped like other symbols.
	return (r >= katakanaFirst && r <= katakanaLast) || r == 'ー'
}

func isCJKIdeograph(r rune) bool {
	return (r >= '一' && r <= '鿿') || // CJK Unified Ideographs
		(r >= '㐀' && r <= '䶿') // Extension A
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_'
}
