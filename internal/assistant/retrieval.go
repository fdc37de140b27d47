// Package assistant implements the event Q&A assistant: keyword
// retrieval over knowledge chunks and answer generation through an LLM.
package assistant

import (
	"sort"
	"strings"

	"github.com/eventnav/program-service/internal/model"
)

// minTokenLen filters out stop-word-sized tokens from queries.
const minTokenLen = 3

// Tokenize lowercases a query and drops tokens too short to carry
// meaning.
func Tokenize(text string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(tok)) >= minTokenLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Score counts how often the query tokens occur in the chunk content.
func Score(content string, tokens []string) int {
	text := strings.ToLower(content)
	score := 0
	for _, tok := range tokens {
		score += strings.Count(text, tok)
	}
	return score
}

// Rank returns the limit most relevant chunks for a query. Chunks that
// match at least one token win; when nothing matches at all, the first
// limit chunks are returned so the assistant still has some context.
func Rank(chunks []model.KnowledgeChunk, query string, limit int) []model.KnowledgeChunk {
	if len(chunks) == 0 || limit <= 0 {
		return nil
	}
	tokens := Tokenize(query)

	type scored struct {
		chunk model.KnowledgeChunk
		score int
	}
	ranked := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		ranked = append(ranked, scored{chunk: c, score: Score(c.Content, tokens)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var out []model.KnowledgeChunk
	for _, s := range ranked {
		if s.score > 0 {
			out = append(out, s.chunk)
			if len(out) == limit {
				return out
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	for _, s := range ranked[:limit] {
		out = append(out, s.chunk)
	}
	return out
}
