package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/huytrandev/sermon-scribe/internal/domain/entities"
)

// ErrEmptyInput is returned when the transcript has no content to summarize
var ErrEmptyInput = errors.New("cannot summarize an empty transcript")

// InvalidResponseError reports a model response that could not be parsed
// into the expected summary shape.
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid summary response: %s", e.Reason)
}

// VendorError wraps a failed chat completion call
type VendorError struct {
	Err error
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("summary request failed: %v", e.Err)
}

func (e *VendorError) Unwrap() error {
	return e.Err
}

const systemPrompt = `You are an AI assistant tasked with summarizing sermon transcripts. Analyze the provided transcript and generate a structured summary. The summary must have four sections: "sermonType" (string), "overview" (string), "scriptures" (array of strings, use full references like "John 3:16"), and "keyPoints" (array of strings).

Instructions:
1. sermonType: Classify the sermon as one of: expository, textual, topical, narrative, other.
2. overview: Write a concise, single-paragraph summary of the sermon's main message and theme.
3. scriptures: List the primary scripture references mentioned (e.g., "John 3:16", "Romans 8:28"). If no specific references are mentioned, the array should be empty ([]).
4. keyPoints: Identify and list the main points, arguments, or takeaways from the sermon (aim for 3-5 points).

Respond ONLY with a valid JSON object adhering exactly to this format (do not include markdown formatting):
{
  "sermonType": "...",
  "overview": "...",
  "scriptures": ["...", "..."],
  "keyPoints": ["...", "..."]
}`

// OpenAI generates structured sermon summaries via chat completions
type OpenAI struct {
	client   *openai.Client
	model    string
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOpenAI creates a summarizer with the default client config.
// baseURL overrides the API endpoint when non-empty.
func NewOpenAI(apiKey, baseURL, model string, logger *zap.Logger) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewOpenAIWithConfig(cfg, model, logger)
}

// NewOpenAIWithConfig creates a summarizer with an explicit client config
func NewOpenAIWithConfig(cfg openai.ClientConfig, model string, logger *zap.Logger) *OpenAI {
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		validate: validator.New(),
		logger:   logger,
	}
}

// Summarize sends the transcript to the model and returns the parsed
// structured summary. The response must be a JSON object matching the
// expected shape; anything else is an InvalidResponseError.
func (s *OpenAI) Summarize(ctx context.Context, transcript string) (*entities.StructuredSummary, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyInput
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Sermon Transcript:\n\n\"\"\"\n%s\n\"\"\"", transcript),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.5,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &VendorError{Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &InvalidResponseError{Reason: "empty completion"}
	}

	content := extractJSON(resp.Choices[0].Message.Content)

	var summary entities.StructuredSummary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		s.logger.Warn("summary response is not valid JSON", zap.Error(err))
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if summary.SermonType == "" {
		summary.SermonType = entities.SermonTypeOther
	}
	if summary.Scriptures == nil {
		summary.Scriptures = []string{}
	}
	if summary.KeyPoints == nil {
		summary.KeyPoints = []string{}
	}
	if err := s.validate.Struct(&summary); err != nil {
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("unexpected shape: %v", err)}
	}
	return &summary, nil
}

// extractJSON strips markdown code fences some models wrap around JSON
// despite being told not to.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}
	return content
}
