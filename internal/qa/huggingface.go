package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultHuggingFaceModel   = "mrm8488/bert-multi-cased-finetuned-xquadv1"
	DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models"
)

// HuggingFaceConfig configures the Inference API question-answering client.
type HuggingFaceConfig struct {
	Model      string        // model id; default DefaultHuggingFaceModel
	BaseURL    string        // default DefaultHuggingFaceBaseURL; the model id is appended
	APIKey     string        // optional bearer token
	Timeout    time.Duration // HTTP timeout; default 30s
	MaxRetries int           // attempts after the first; default 3
	RetryDelay time.Duration // base backoff; default 1s
	HTTPClient *http.Client  // optional (tests)
}

// HuggingFace calls a hosted extractive QA model (task "question-answering").
type HuggingFace struct {
	cfg    HuggingFaceConfig
	url    string
	client *http.Client
	log    *slog.Logger
}

func NewHuggingFace(cfg HuggingFaceConfig, logger *slog.Logger) *HuggingFace {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHuggingFaceModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HuggingFace{
		cfg:    cfg,
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Model,
		client: client,
		log:    logger,
	}
}

type hfRequest struct {
	Inputs struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	} `json:"inputs"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

func (h *HuggingFace) Answer(ctx context.Context, question, passage string) (Candidate, bool, error) {
	var body hfRequest
	body.Inputs.Question = question
	body.Inputs.Context = passage
	body.Options.WaitForModel = true

	headers := map[string]string{}
	if h.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + h.cfg.APIKey
	}

	var raw []byte
	err := retry.Do(
		func() error {
			b, err := sendJSON(ctx, h.client, h.url, body, headers, h.log)
			if err != nil {
				var se *StatusError
				if errors.As(err, &se) && !se.Retryable() {
					return retry.Unrecoverable(err)
				}
				return err
			}
			raw = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(h.cfg.MaxRetries)+1),
		retry.Delay(h.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			h.log.Warn("qa.huggingface.retry", "attempt", n+1, "model", h.cfg.Model, "error", err)
		}),
	)
	if err != nil {
		return Candidate{}, false, err
	}
	return decodeHFAnswer(raw)
}

// decodeHFAnswer accepts both the single-object response and the top-k list form.
func decodeHFAnswer(raw []byte) (Candidate, bool, error) {
	raw = bytes.TrimSpace(raw)
	var cands []Candidate
	switch {
	case len(raw) > 0 && raw[0] == '[':
		if err := json.Unmarshal(raw, &cands); err != nil {
			return Candidate{}, false, fmt.Errorf("decode answer list: %w", err)
		}
	default:
		var c Candidate
		if err := json.Unmarshal(raw, &c); err != nil {
			return Candidate{}, false, fmt.Errorf("decode answer: %w", err)
		}
		cands = []Candidate{c}
	}

	var best Candidate
	found := false
	for _, c := range cands {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		if !found || c.Score > best.Score {
			best, found = c, true
		}
	}
	return best, found, nil
}
