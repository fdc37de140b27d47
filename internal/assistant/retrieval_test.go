package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventnav/program-service/internal/model"
)

func chunk(chunkType, content string) model.KnowledgeChunk {
	return model.KnowledgeChunk{ChunkType: chunkType, Content: content}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := Tokenize("Go to the Main Hall at 10")
	assert.Equal(t, []string{"the", "main", "hall"}, tokens)
}

func TestScoreCountsOccurrences(t *testing.T) {
	content := "The workshop about Go. Go workshops run twice."
	assert.Equal(t, 3, Score(content, []string{"workshop", "twice"}))
	assert.Equal(t, 0, Score(content, []string{"keynote"}))
}

func TestRankPrefersMatchingChunks(t *testing.T) {
	chunks := []model.KnowledgeChunk{
		chunk("program", "Opening keynote in the Main Hall at 10:00."),
		chunk("speaker", "Dr. Ivanova speaks about distributed systems."),
		chunk("location", "The Main Hall is on the second floor."),
	}

	out := Rank(chunks, "where is the main hall", 2)
	require.Len(t, out, 2)
	for _, c := range out {
		assert.Contains(t, c.Content, "Main Hall")
	}
}

func TestRankFallsBackWhenNothingMatches(t *testing.T) {
	chunks := []model.KnowledgeChunk{
		chunk("program", "Opening keynote."),
		chunk("speaker", "Dr. Ivanova."),
		chunk("location", "Second floor."),
	}

	out := Rank(chunks, "zzz qqq", 2)
	assert.Len(t, out, 2, "no token matches should still yield context")
}

func TestRankEmptyInputs(t *testing.T) {
	assert.Nil(t, Rank(nil, "anything", 5))
	assert.Nil(t, Rank([]model.KnowledgeChunk{chunk("x", "y")}, "q", 0))
}

func TestBuildSystemPromptIncludesKnowledge(t *testing.T) {
	prompt := BuildSystemPrompt("DevConf", []string{"Keynote at 10.", "Lunch at 13."})
	assert.Contains(t, prompt, `"DevConf"`)
	assert.Contains(t, prompt, "Keynote at 10.")
	assert.Contains(t, prompt, "Lunch at 13.")

	empty := BuildSystemPrompt("DevConf", nil)
	assert.Contains(t, empty, "No additional information available.")
}
