package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/eventnav/program-service/internal/model"
)

// Chunk types produced by the builder.
const (
	ChunkEvent    = "event"
	ChunkProgram  = "program"
	ChunkSpeaker  = "speaker"
	ChunkLocation = "location"
)

const timeLayout = "02.01 15:04"

// BuildEventChunks flattens an event's catalog into retrievable text
// chunks: one event summary, one chunk per session, speaker and
// location. The chunks are denormalized on purpose; retrieval never
// joins back into the catalog.
func BuildEventChunks(event *model.Event, sessions []model.Session, speakers []model.Speaker, locations []model.Location) []model.KnowledgeChunk {
	eventID := event.ID
	chunks := []model.KnowledgeChunk{{
		EventID:   &eventID,
		ChunkType: ChunkEvent,
		Content:   eventSummary(event),
	}}

	for _, s := range sessions {
		chunks = append(chunks, model.KnowledgeChunk{
			EventID:   &eventID,
			ChunkType: ChunkProgram,
			Content:   sessionSummary(&s),
			ExtraData: []byte(fmt.Sprintf(`{"session_id":%q}`, s.ID)),
		})
	}
	for _, sp := range speakers {
		chunks = append(chunks, model.KnowledgeChunk{
			EventID:   &eventID,
			ChunkType: ChunkSpeaker,
			Content:   speakerSummary(&sp),
			ExtraData: []byte(fmt.Sprintf(`{"speaker_id":%q}`, sp.ID)),
		})
	}
	for _, l := range locations {
		chunks = append(chunks, model.KnowledgeChunk{
			EventID:   &eventID,
			ChunkType: ChunkLocation,
			Content:   locationSummary(&l),
			ExtraData: []byte(fmt.Sprintf(`{"location_id":%q}`, l.ID)),
		})
	}
	return chunks
}

func eventSummary(e *model.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event %q.", e.Title)
	fmt.Fprintf(&b, " Time: %s - %s.", e.DateStart.Format(timeLayout), e.DateEnd.Format("15:04"))
	if e.Location != "" {
		fmt.Fprintf(&b, " Venue: %s.", e.Location)
	}
	if e.Description != "" {
		b.WriteString(" " + e.Description)
	}
	return b.String()
}

func sessionSummary(s *model.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.", s.Title)
	if span := timeSpan(s.DateStart, s.DateEnd); span != "" {
		fmt.Fprintf(&b, " Time: %s.", span)
	}
	if s.Description != "" {
		b.WriteString(" " + s.Description)
	}
	if s.LocationName != "" {
		fmt.Fprintf(&b, " Location: %s.", s.LocationName)
	}
	if len(s.Speakers) > 0 {
		names := make([]string, 0, len(s.Speakers))
		for _, sp := range s.Speakers {
			names = append(names, sp.Name)
		}
		fmt.Fprintf(&b, " Speakers: %s.", strings.Join(names, ", "))
	}
	return b.String()
}

func timeSpan(start, end *time.Time) string {
	if start == nil {
		return ""
	}
	span := start.Format(timeLayout)
	if end != nil {
		span += " - " + end.Format("15:04")
	}
	return span
}

func speakerSummary(sp *model.Speaker) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.", sp.Name)
	role := strings.TrimSpace(sp.Position + " " + sp.Company)
	if role != "" {
		fmt.Fprintf(&b, " %s.", role)
	}
	if sp.Bio != "" {
		b.WriteString(" " + sp.Bio)
	}
	return b.String()
}

func locationSummary(l *model.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.", l.Name)
	if l.Floor != nil {
		fmt.Fprintf(&b, " Floor %d.", *l.Floor)
	}
	if l.Description != "" {
		b.WriteString(" " + l.Description)
	}
	return b.String()
}
