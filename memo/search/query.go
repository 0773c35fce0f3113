package search

import (
	"strings"
	"unicode"
)

// Operator is a boolean keyword detected in a query.
type Operator string

const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
	OpNot Operator = "NOT"
)

// OperatorOccurrence records an operator keyword and the rune position of
// its token in the raw query.
type OperatorOccurrence struct {
	Op       Operator
	Position int
}

// FieldClause is a field:value filter embedded in a query.
type FieldClause struct {
	Field string
	Value string
}

// ParsedQuery is the structured form of a raw search box input. Constructed
// fresh per search call and immutable once built.
type ParsedQuery struct {
	// Terms are the free text terms left after clause and operator
	// extraction.
	Terms []string
	// Phrases are quoted phrases, kept atomic.
	Phrases []string
	// FieldClauses are the field:value filters, in query order.
	FieldClauses []FieldClause
	// Operators records detected boolean keywords. Detection is
	// syntactic; see ComplexSearch for the evaluation semantics.
	Operators []OperatorOccurrence
	// Tags and Categories duplicate the tag:/category: clause values for
	// convenience.
	Tags       []string
	Categories []string
}

// IsPlain reports whether the query carries no field clauses and no
// operators, i.e. should be evaluated as a plain ranked text search.
func (q ParsedQuery) IsPlain() bool {
	return len(q.FieldClauses) == 0 && len(q.Operators) == 0
}

// Fields accepted in field:value clauses.
var queryFields = map[string]bool{
	"tag":      true,
	"category": true,
	"title":    true,
	"content":  true,
}

// Boolean operator keyword aliases, matched case-insensitively on whole
// tokens. Japanese keywords and fullwidth symbols are first-class aliases.
var operatorAliases = map[string]Operator{
	"and": OpAnd,
	"かつ":  OpAnd,
	"＋":   OpAnd,
	"or":  OpOr,
	"または": OpOr,
	"｜":   OpOr,
	"not": OpNot,
	"除く":  OpNot,
	"－":   OpNot,
}

// token is a lexed piece of the raw query with its rune offset.
type token struct {
	text     string
	position int
	quoted   bool
}

// ParseQuery turns a raw search box input into a ParsedQuery. The scanner
// lexes quoted phrases and whitespace-separated tokens in one pass, then
// each token is classified in fixed precedence: field clause first, then
// operator keyword, then free term. Classifying per token makes the "field
// clauses strip before operator detection" invariant structural: a token
// like tag:or can never be read as an operator.
func ParseQuery(raw string) ParsedQuery {
	var parsed ParsedQuery

	for _, tok := range lexQuery(raw) {
		if tok.quoted {
			if tok.text != "" {
				parsed.Phrases = append(parsed.Phrases, tok.text)
			}
			continue
		}

		if field, value, ok := splitFieldClause(tok.text); ok {
			parsed.FieldClauses = append(parsed.FieldClauses, FieldClause{Field: field, Value: value})
			switch field {
			case "tag":
				parsed.Tags = append(parsed.Tags, value)
			case "category":
				parsed.Categories = append(parsed.Categories, value)
			}
			continue
		}

		if op, ok := operatorAliases[strings.ToLower(tok.text)]; ok {
			parsed.Operators = append(parsed.Operators, OperatorOccurrence{
				Op:       op,
				Position: tok.position,
			})
			continue
		}

		parsed.Terms = append(parsed.Terms, tok.text)
	}

	return parsed
}

// lexQuery splits raw into quoted phrases and plain whitespace-separated
// tokens, recording rune positions. An unterminated quote runs to the end
// of the input.
func lexQuery(raw string) []token {
	var tokens []token
	runes := []rune(raw)

	i := 0
	for i < len(runes) {
		r := runes[i]

		if unicode.IsSpace(r) {
			i++
			continue
		}

		if r == '"' || r == '“' {
			closing := matchingQuote(r)
			start := i + 1
			end := start
			for end < len(runes) && runes[end] != closing {
				end++
			}
			tokens = append(tokens, token{
				text:     strings.TrimSpace(string(runes[start:end])),
				position: i,
				quoted:   true,
			})
			i = end + 1
			continue
		}

		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		tokens = append(tokens, token{
			text:     string(runes[start:i]),
			position: start,
		})
	}

	return tokens
}

func matchingQuote(open rune) rune {
	if open == '“' {
		return '”'
	}
	return '"'
}

// splitFieldClause recognizes field:value tokens for the accepted fields.
// The field name is case-insensitive and the fullwidth colon is accepted.
func splitFieldClause(text string) (field, value string, ok bool) {
	idx := strings.IndexAny(text, ":：")
	if idx <= 0 {
		return "", "", false
	}
	field = strings.ToLower(text[:idx])
	if !queryFields[field] {
		return "", "", false
	}
	value = strings.TrimLeft(text[idx:], ":：")
	if value == "" {
		return "", "", false
	}
	return field, value, true
}
