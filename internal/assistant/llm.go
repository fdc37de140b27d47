package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// UnavailableMessage is returned when no LLM backend is configured or a
// request fails; attendees get pointed at the organizers instead of an
// error page.
const UnavailableMessage = "The assistant is temporarily unavailable. Please ask the event organizers for help."

// LLM generates an answer from a system prompt and a user question.
// Implemented by OpenAIClient; tests substitute a stub.
type LLM interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// OpenAIClient is the production LLM backed by OpenAI chat completions.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIClient constructs an OpenAIClient. Returns nil when apiKey is
// empty; callers treat a nil LLM as degraded mode.
func NewOpenAIClient(apiKey, model string, maxTokens int64) *OpenAIClient {
	if apiKey == "" {
		return nil
	}
	return &OpenAIClient{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate asks the model for a completion.
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildSystemPrompt assembles the assistant persona plus the retrieved
// knowledge base for one event.
func BuildSystemPrompt(eventName string, knowledge []string) string {
	knowledgeText := "No additional information available."
	if len(knowledge) > 0 {
		knowledgeText = strings.Join(knowledge, "\n\n")
	}
	return fmt.Sprintf(`You are the navigation assistant for the event %q.

Help attendees with:
- the program (schedule, speakers, topics)
- finding rooms and locations at the venue
- registering for sessions
- general event information

Rules:
1. Answer ONLY from the knowledge base below.
2. If the answer is not there, say so honestly and suggest asking the organizers.
3. Be polite and concise.

Event knowledge base:
%s`, eventName, knowledgeText)
}
