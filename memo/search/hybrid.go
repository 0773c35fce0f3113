package search

import "math"

// Weighting of the two result streams when merging: semantic similarity
// dominates, lexical rank refines.
const (
	semanticWeight = 0.7
	lexicalWeight  = 0.3
)

// SemanticHit is one embedding-similarity result supplied by the caller.
type SemanticHit struct {
	Document Document
	// Similarity is the cosine similarity in [-1,1], usually [0,1] for
	// normalized text embeddings.
	Similarity float64
}

// MergeHybrid combines semantic and lexical result streams into one ranked
// list. Scores merge 70/30; a document present in both streams is deduped
// by ID keeping the semantic-sourced entry with the combined score.
func MergeHybrid(semantic []SemanticHit, lexical []Result, maxResults int) []Result {
	merged := make(map[string]Result, len(semantic)+len(lexical))

	for _, hit := range semantic {
		merged[hit.Document.ID] = Result{
			Document:  hit.Document,
			RankScore: semanticWeight * hit.Similarity,
			Mode:      ModeHybrid,
		}
	}

	for _, r := range lexical {
		if existing, ok := merged[r.Document.ID]; ok {
			// Keep the semantic entry, fold in the lexical rank.
			existing.RankScore += lexicalWeight * r.RankScore
			existing.MatchedFields = r.MatchedFields
			merged[r.Document.ID] = existing
			continue
		}
		merged[r.Document.ID] = Result{
			Document:      r.Document,
			RankScore:     lexicalWeight * r.RankScore,
			MatchedFields: r.MatchedFields,
			Mode:          ModeHybrid,
		}
	}

	results := make([]Result, 0, len(merged))
	for _, r := range merged {
		results = append(results, r)
	}
	sortResults(results)
	return clampResults(results, maxResults)
}

// Cosine returns the cosine similarity of two vectors, 0 for mismatched or
// zero-length input.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
