package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
)

var (
	// ErrMissingAPIKey is returned when Generate is called without a credential.
	ErrMissingAPIKey = errors.New("api key is empty")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// geminiAIRepository is an implementation of AIRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg        *config.Config
	logger     *logger.Logger
	httpClient *http.Client

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository. httpClient may
// be nil.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, httpClient *http.Client) AIRepository {
	return &geminiAIRepository{
		cfg:        cfg,
		logger:     log,
		httpClient: httpClient,
		clients:    make(map[string]*genai.Client),
	}
}

// client returns the genai client for apiKey, creating it on first use.
func (r *geminiAIRepository) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[apiKey]; ok {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: r.httpClient,
	}
	if r.cfg.Gemini.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: r.cfg.Gemini.BaseURL}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	// A user switching keys should not keep stale clients around.
	clear(r.clients)
	r.clients[apiKey] = c
	return c, nil
}

func (r *geminiAIRepository) Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrMissingAPIKey
	}

	c, err := r.client(ctx, apiKey)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to init Gemini client", logger.ErrorField(err))
		return "", err
	}

	contents := make([]*genai.Content, 0, len(req.Contents))
	for _, m := range req.Contents {
		contents = append(contents, genai.NewContentFromText(m.Text, genai.Role(roleOf(m.Role))))
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxOutputTokens),
	}

	r.logger.DebugContext(ctx, "Request Gemini API",
		logger.StringField("model", req.Model),
		logger.IntField("contents", len(contents)),
		logger.IntField("max_output_tokens", req.MaxOutputTokens))

	resp, err := c.Models.GenerateContent(ctx, req.Model, contents, genCfg)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to generate content from Gemini API",
			logger.StringField("model", req.Model), logger.ErrorField(err))
		return "", fmt.Errorf("failed to generate content with %s: %w", req.Model, err)
	}

	text := responseText(resp)
	if text == "" {
		r.logger.WarnContext(ctx, "Gemini API returned no text", logger.StringField("model", req.Model))
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, req.Model)
	}
	return text, nil
}

func roleOf(role entity.ChatRole) string {
	if role == entity.ChatRoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
