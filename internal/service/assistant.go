package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eventnav/program-service/internal/assistant"
	"github.com/eventnav/program-service/internal/model"
	"github.com/eventnav/program-service/internal/repository"
)

// ErrRateLimited is returned when a user exceeds the assistant quota.
var ErrRateLimited = errors.New("too many assistant requests")

// topChunks is how many ranked chunks make it into the prompt.
const topChunks = 8

// AssistantService answers attendee questions about an event. Answers
// are grounded in pre-built knowledge chunks; the LLM only ever sees
// catalog text, never the database.
type AssistantService struct {
	events    *repository.EventRepository
	sessions  *repository.SessionRepository
	speakers  *repository.SpeakerRepository
	locations *repository.LocationRepository
	knowledge *repository.KnowledgeRepository
	llm       assistant.LLM
	log       *zap.Logger

	perMinute rate.Limit
	mu        sync.Mutex
	limiters  map[uuid.UUID]*rate.Limiter
}

func NewAssistantService(
	events *repository.EventRepository,
	sessions *repository.SessionRepository,
	speakers *repository.SpeakerRepository,
	locations *repository.LocationRepository,
	knowledge *repository.KnowledgeRepository,
	llm assistant.LLM,
	ratePerMin float64,
	log *zap.Logger,
) *AssistantService {
	return &AssistantService{
		events:    events,
		sessions:  sessions,
		speakers:  speakers,
		locations: locations,
		knowledge: knowledge,
		llm:       llm,
		log:       log,
		perMinute: rate.Limit(ratePerMin / 60.0),
		limiters:  make(map[uuid.UUID]*rate.Limiter),
	}
}

func (s *AssistantService) limiter(userID uuid.UUID) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[userID]
	if !ok {
		l = rate.NewLimiter(s.perMinute, 3)
		s.limiters[userID] = l
	}
	return l
}

// Chat answers one user question about an event.
func (s *AssistantService) Chat(ctx context.Context, userID uuid.UUID, req model.AssistantChatRequest) (*model.AssistantChatResponse, error) {
	if req.Message == "" {
		return nil, invalid("message is required")
	}
	if !s.limiter(userID).Allow() {
		return nil, ErrRateLimited
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	chunks, err := s.knowledge.ListForEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	top := assistant.Rank(chunks, req.Message, topChunks)
	sources := chunkSources(top)

	if s.llm == nil {
		return &model.AssistantChatResponse{Response: assistant.UnavailableMessage, Sources: sources}, nil
	}

	knowledge := make([]string, 0, len(top))
	for _, c := range top {
		knowledge = append(knowledge, c.Content)
	}
	answer, err := s.llm.Generate(ctx, assistant.BuildSystemPrompt(event.Title, knowledge), req.Message)
	if err != nil {
		// A broken upstream must not break the chat; degrade instead.
		s.log.Warn("assistant generation failed",
			zap.String("event_id", req.EventID.String()), zap.Error(err))
		return &model.AssistantChatResponse{Response: assistant.UnavailableMessage, Sources: sources}, nil
	}
	return &model.AssistantChatResponse{Response: answer, Sources: sources}, nil
}

// RefreshEventChunks rebuilds the knowledge base of one event from the
// current catalog and returns the number of chunks written.
func (s *AssistantService) RefreshEventChunks(ctx context.Context, eventID uuid.UUID) (int, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	sessions, err := s.sessions.ListByEvent(ctx, eventID, model.SessionFilter{})
	if err != nil {
		return 0, err
	}
	speakers, err := s.speakers.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	locations, err := s.locations.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	chunks := assistant.BuildEventChunks(event, sessions, speakers, locations)
	if err := s.knowledge.Replace(ctx, &eventID, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// RefreshAllChunks rebuilds the knowledge base of every event.
func (s *AssistantService) RefreshAllChunks(ctx context.Context) error {
	events, err := s.events.List(ctx)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := s.RefreshEventChunks(ctx, ev.ID); err != nil {
			s.log.Error("knowledge refresh failed",
				zap.String("event_id", ev.ID.String()), zap.Error(err))
		}
	}
	return nil
}

func chunkSources(chunks []model.KnowledgeChunk) []string {
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		seen[c.ChunkType] = true
	}
	sources := make([]string, 0, len(seen))
	for t := range seen {
		sources = append(sources, t)
	}
	sort.Strings(sources)
	return sources
}
