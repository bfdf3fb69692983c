package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig configures the chat-completion QA provider.
type OpenAIConfig struct {
	Model      string        // default DefaultOpenAIModel
	BaseURL    string        // optional (tests, compatible gateways)
	APIKey     string        // required
	Timeout    time.Duration // HTTP timeout; default 60s
	MaxRetries int           // SDK transport retries
	HTTPClient *http.Client  // optional (tests)
}

// OpenAI emulates extractive QA with a chat model instructed to copy a span verbatim
// from the passage and rate it. Replies are validated against a JSON schema.
type OpenAI struct {
	model  string
	client openai.Client
	log    *slog.Logger
}

const openAISystemPrompt = "You answer questions about legal contracts by extracting a span from the given passage. " +
	"Copy the answer verbatim from the passage; never paraphrase or translate. " +
	"If the passage does not contain the answer, use null. " +
	`Reply with ONLY a JSON object {"answer": string|null, "score": number} where score is your confidence between 0 and 1.`

func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) (*OpenAI, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" || cfg.Model == DefaultHuggingFaceModel {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
		log:    logger,
	}, nil
}

func (o *OpenAI) Answer(ctx context.Context, question, passage string) (Candidate, bool, error) {
	start := time.Now()
	user := "Question: " + question + "\n\nPassage:\n" + passage

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAISystemPrompt),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return Candidate{}, false, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return Candidate{}, false, errors.New("openai: no choices in response")
	}

	content := extractJSONObject(resp.Choices[0].Message.Content)
	if err := validateAnswerJSON([]byte(content)); err != nil {
		o.log.Warn("qa.openai.schema_validation_failed", "error", err, "content", truncate(content, 512))
		return Candidate{}, false, err
	}

	var out struct {
		Answer *string `json:"answer"`
		Score  float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return Candidate{}, false, fmt.Errorf("unmarshal answer: %w", err)
	}

	o.log.Debug("qa.openai.ok",
		"model", o.model,
		"has_answer", out.Answer != nil,
		"score", out.Score,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if out.Answer == nil || strings.TrimSpace(*out.Answer) == "" {
		return Candidate{}, false, nil
	}
	return Candidate{Text: *out.Answer, Score: out.Score}, true, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("openai error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("openai error (status %d)", apiErr.StatusCode)
	}
	return err
}
