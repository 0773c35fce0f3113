package search

import (
	"strings"

	"github.com/memoka/memoka-server/textnorm"
)

// ComplexSearch evaluates a query with field clauses and boolean keywords.
// A query without either falls back to the plain ranked text search, so the
// grammar never degrades a simple query.
//
// Evaluation is deliberately flat rather than a boolean tree: every field
// clause must match (field filters are conjunctive regardless of any AND/OR
// keywords elsewhere in the query), and when free terms or phrases exist at
// least one of them must match. The record score is the mean of the matched
// clause and term scores. Detected operators are recorded on the parse but
// do not branch evaluation.
func ComplexSearch(docs []Document, rawQuery string, opts TextOptions) []Result {
	if strings.TrimSpace(rawQuery) == "" {
		return []Result{}
	}

	parsed := ParseQuery(rawQuery)
	if parsed.IsPlain() && len(parsed.Phrases) == 0 {
		return TextSearch(docs, rawQuery, opts)
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		if r, ok := evaluateComplex(doc, parsed, opts); ok {
			r.Mode = ModeComplex
			results = append(results, r)
		}
	}

	sortResults(results)
	return clampResults(results, opts.MaxResults)
}

// evaluateComplex applies the conjunctive field filters and the disjunctive
// term pool to one document.
func evaluateComplex(doc Document, parsed ParsedQuery, opts TextOptions) (Result, bool) {
	var scores []float64
	fieldSet := map[string]bool{}

	for _, clause := range parsed.FieldClauses {
		score, field, ok := matchFieldClause(doc, clause, opts)
		if !ok {
			return Result{}, false
		}
		scores = append(scores, score)
		fieldSet[field] = true
	}

	// Free terms are an OR pool; quoted phrases join it but match by
	// containment only.
	if len(parsed.Terms) > 0 || len(parsed.Phrases) > 0 {
		termScore, termFields, ok := matchTermPool(doc, parsed, opts)
		if !ok {
			return Result{}, false
		}
		scores = append(scores, termScore)
		for _, f := range termFields {
			fieldSet[f] = true
		}
	}

	if len(scores) == 0 {
		return Result{}, false
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}

	fields := make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		fields = append(fields, f)
	}

	return Result{
		Document:      doc,
		RankScore:     sum / float64(len(scores)),
		MatchedFields: fields,
	}, true
}

// matchFieldClause evaluates one field:value filter against the document.
// title: clauses match the summary, which is the closest thing a memo has
// to a title.
func matchFieldClause(doc Document, clause FieldClause, opts TextOptions) (float64, string, bool) {
	switch clause.Field {
	case "tag":
		normalized := textnorm.NormalizeForSearch(clause.Value)
		if normalized == "" {
			return 0, "", false
		}
		docTags := make([]string, 0, len(doc.Tags))
		for _, t := range doc.Tags {
			if n := textnorm.NormalizeForSearch(t); n != "" {
				docTags = append(docTags, n)
			}
		}
		score, ok := bestTagScore(normalized, docTags, opts)
		return score, fieldTags, ok

	case "category":
		score, ok := matchClauseText(clause.Value, doc.Category, opts)
		return score, fieldCategory, ok

	case "title":
		score, ok := matchClauseText(clause.Value, doc.Summary, opts)
		return score, fieldSummary, ok

	case "content":
		score, ok := matchClauseText(clause.Value, doc.Content, opts)
		return score, fieldContent, ok
	}
	return 0, "", false
}

func matchClauseText(value, fieldText string, opts TextOptions) (float64, bool) {
	if fieldText == "" {
		return 0, false
	}
	normalizedValue := textnorm.NormalizeForSearch(value)
	if normalizedValue == "" {
		return 0, false
	}
	return matchField(normalizedValue, fieldText, opts)
}

// matchTermPool requires at least one free term or phrase to match any
// weighted field; the pool score is the best per-term document score.
func matchTermPool(doc Document, parsed ParsedQuery, opts TextOptions) (float64, []string, bool) {
	var best float64
	var bestFields []string
	matched := false

	for _, term := range parsed.Terms {
		normalized := textnorm.NormalizeForSearch(term)
		if normalized == "" {
			continue
		}
		if r, ok := scoreDocument(doc, normalized, opts); ok {
			matched = true
			if r.RankScore > best {
				best = r.RankScore
				bestFields = r.MatchedFields
			}
		}
	}

	for _, phrase := range parsed.Phrases {
		if score, fields, ok := matchPhrase(doc, phrase); ok {
			matched = true
			if score > best {
				best = score
				bestFields = fields
			}
		}
	}

	if !matched {
		return 0, nil, false
	}
	return best, bestFields, true
}

// matchPhrase checks normalized containment of a quoted phrase in the
// document's text fields. Phrases are atomic: no fuzzy fallback.
func matchPhrase(doc Document, phrase string) (float64, []string, bool) {
	normalized := textnorm.NormalizeForSearch(phrase)
	if normalized == "" {
		return 0, nil, false
	}

	var fields []string
	check := func(field, text string) {
		if text == "" {
			return
		}
		if strings.Contains(textnorm.NormalizeForSearch(text), normalized) {
			fields = append(fields, field)
		}
	}

	check(fieldContent, doc.Content)
	check(fieldSummary, doc.Summary)
	check(fieldCategory, doc.Category)
	check(fieldTags, strings.Join(doc.Tags, " "))
	check(fieldKeywords, strings.Join(doc.Keywords, " "))

	if len(fields) == 0 {
		return 0, nil, false
	}
	return 1.0, fields, true
}
