package assistant

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventnav/program-service/internal/model"
)

func TestBuildEventChunks(t *testing.T) {
	eventID := uuid.New()
	start := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	floor := 2

	event := &model.Event{
		ID:          eventID,
		Title:       "Tech Forum",
		Description: "Annual developer conference.",
		DateStart:   start,
		DateEnd:     start.Add(8 * time.Hour),
		Location:    "Expo Center",
	}
	sessions := []model.Session{{
		ID:           uuid.New(),
		Title:        "Designing APIs",
		DateStart:    &start,
		DateEnd:      &end,
		LocationName: "Hall A",
		Speakers:     []model.SessionSpeaker{{Name: "Dana Fox"}, {Name: "Lee Chan"}},
	}}
	speakers := []model.Speaker{{
		ID: uuid.New(), Name: "Dana Fox", Position: "Architect", Company: "Acme", Bio: "Builds platforms.",
	}}
	locations := []model.Location{{
		ID: uuid.New(), Name: "Hall A", Floor: &floor, Description: "Main stage.",
	}}

	chunks := BuildEventChunks(event, sessions, speakers, locations)
	require.Len(t, chunks, 4)

	assert.Equal(t, ChunkEvent, chunks[0].ChunkType)
	assert.Contains(t, chunks[0].Content, "Tech Forum")
	assert.Contains(t, chunks[0].Content, "Expo Center")
	require.NotNil(t, chunks[0].EventID)
	assert.Equal(t, eventID, *chunks[0].EventID)

	assert.Equal(t, ChunkProgram, chunks[1].ChunkType)
	assert.Contains(t, chunks[1].Content, "Designing APIs")
	assert.Contains(t, chunks[1].Content, "12.09 10:00 - 10:45")
	assert.Contains(t, chunks[1].Content, "Hall A")
	assert.Contains(t, chunks[1].Content, "Dana Fox, Lee Chan")
	assert.Contains(t, string(chunks[1].ExtraData), sessions[0].ID.String())

	assert.Equal(t, ChunkSpeaker, chunks[2].ChunkType)
	assert.Contains(t, chunks[2].Content, "Architect Acme")

	assert.Equal(t, ChunkLocation, chunks[3].ChunkType)
	assert.Contains(t, chunks[3].Content, "Floor 2")
}

func TestBuildEventChunksSparseData(t *testing.T) {
	event := &model.Event{ID: uuid.New(), Title: "Meetup"}
	chunks := BuildEventChunks(event, nil, nil, nil)
	require.Len(t, chunks, 1)
	assert.Equal(t, ChunkEvent, chunks[0].ChunkType)
	assert.Contains(t, chunks[0].Content, "Meetup")
}
