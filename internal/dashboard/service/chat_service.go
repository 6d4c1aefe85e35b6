package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
	"market-dashboard/pkg/markdown"
	"market-dashboard/pkg/utils"
)

const (
	// MissingCredentialReply is returned instead of calling the model when no
	// credential is stored.
	MissingCredentialReply = "API key is not set. Please set your Gemini API key first."
	// WelcomeMessage opens every transcript once a credential is available.
	WelcomeMessage = "Hello! I'm your Crypton assistant powered by Google Gemini. How can I help you with your crypto and stock investments today?"

	defaultHistoryWindow = 10
)

// ErrEmptyCredential is returned when an empty credential is submitted.
var ErrEmptyCredential = errors.New("credential is empty")

// ChatService keeps the in-memory assistant transcript and forwards user messages
// to the hosted model.
type ChatService interface {
	Messages(ctx context.Context) ([]entity.ChatMessage, error)
	Send(ctx context.Context, text string) (entity.ChatMessage, error)
	ClearMessages()

	HasCredential(ctx context.Context) (bool, error)
	SetCredential(ctx context.Context, key string) error
	ClearCredential(ctx context.Context) error
}

type chatService struct {
	cfg         *config.Config
	log         *logger.Logger
	credentials repository.CredentialRepository
	bridge      *chatBridge
	now         func() time.Time

	mu       sync.Mutex
	messages []entity.ChatMessage
}

// NewChatService creates a ChatService.
func NewChatService(cfg *config.Config, log *logger.Logger, ai repository.AIRepository, credentials repository.CredentialRepository) ChatService {
	return &chatService{
		cfg:         cfg,
		log:         log,
		credentials: credentials,
		bridge:      &chatBridge{cfg: cfg, log: log, ai: ai},
		now:         utils.TimeNowUTC,
	}
}

func (s *chatService) welcome() entity.ChatMessage {
	return entity.ChatMessage{Role: entity.ChatRoleModel, Text: WelcomeMessage, Timestamp: s.now()}
}

// Messages returns a copy of the transcript, seeding it with the welcome message
// when a credential exists and nothing has been said yet.
func (s *chatService) Messages(ctx context.Context) ([]entity.ChatMessage, error) {
	key, err := s.credentials.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 && key != "" {
		s.messages = []entity.ChatMessage{s.welcome()}
	}
	out := make([]entity.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *chatService) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

func (s *chatService) historyWindow() int {
	if s.cfg.Gemini.HistoryWindow > 0 {
		return s.cfg.Gemini.HistoryWindow
	}
	return defaultHistoryWindow
}

// Send appends text to the transcript, asks the model for a reply with the most
// recent messages as context and appends the reply. The reply is returned even
// when every model failed; it then carries a diagnostic text.
func (s *chatService) Send(ctx context.Context, text string) (entity.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entity.ChatMessage{}, ErrEmptyMessage
	}

	key, err := s.credentials.Get(ctx)
	if err != nil {
		return entity.ChatMessage{}, fmt.Errorf("failed to read credential: %w", err)
	}

	s.mu.Lock()
	window := s.historyWindow()
	start := len(s.messages) - window
	if start < 0 {
		start = 0
	}
	history := make([]entity.ChatMessage, len(s.messages)-start)
	copy(history, s.messages[start:])
	s.messages = append(s.messages, entity.ChatMessage{Role: entity.ChatRoleUser, Text: text, Timestamp: s.now()})
	s.mu.Unlock()

	var replyText string
	if key == "" {
		replyText = MissingCredentialReply
	} else {
		replyText = s.bridge.Reply(ctx, key, history, text)
	}

	reply := entity.ChatMessage{Role: entity.ChatRoleModel, Text: replyText, Timestamp: s.now()}
	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.mu.Unlock()
	return reply, nil
}

func (s *chatService) HasCredential(ctx context.Context) (bool, error) {
	key, err := s.credentials.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read credential: %w", err)
	}
	return key != "", nil
}

// SetCredential stores key and restarts the transcript with the welcome message.
func (s *chatService) SetCredential(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyCredential
	}
	if err := s.credentials.Set(ctx, key); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	s.mu.Lock()
	s.messages = []entity.ChatMessage{s.welcome()}
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Chat credential updated")
	return nil
}

func (s *chatService) ClearCredential(ctx context.Context) error {
	if err := s.credentials.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	s.log.InfoContext(ctx, "Chat credential cleared")
	return nil
}

// chatBridge turns a query into a rendered reply, degrading from a multi-turn
// call to a flattened prompt, then to the fallback model, then to a diagnostic.
type chatBridge struct {
	cfg *config.Config
	log *logger.Logger
	ai  repository.AIRepository
}

func (b *chatBridge) Reply(ctx context.Context, apiKey string, history []entity.ChatMessage, query string) string {
	gc := b.cfg.Gemini

	turns := conversationTurns(history)
	turns = append(turns, entity.ChatMessage{Role: entity.ChatRoleUser, Text: repository.BuildChatQueryPrompt(query)})
	text, err := b.ai.Generate(ctx, apiKey, repository.GenerateRequest{
		Model:           gc.Model,
		Contents:        turns,
		MaxOutputTokens: gc.MaxOutputTokens,
		Temperature:     gc.Temperature,
	})
	if err == nil {
		return markdown.Render(text)
	}
	b.log.WarnContext(ctx, "Chat request failed, trying direct generation", logger.ErrorField(err))

	text, err = b.ai.Generate(ctx, apiKey, repository.GenerateRequest{
		Model:           gc.Model,
		Contents:        []entity.ChatMessage{{Role: entity.ChatRoleUser, Text: repository.BuildTranscriptPrompt(history, query)}},
		MaxOutputTokens: gc.MaxOutputTokens,
		Temperature:     gc.Temperature,
	})
	if err == nil {
		return markdown.Render(text)
	}
	primaryErr := err
	b.log.ErrorContext(ctx, "Primary model failed, trying fallback model",
		logger.StringField("model", gc.Model), logger.ErrorField(primaryErr))

	text, err = b.ai.Generate(ctx, apiKey, repository.GenerateRequest{
		Model:           gc.FallbackModel,
		Contents:        []entity.ChatMessage{{Role: entity.ChatRoleUser, Text: repository.BuildSimplePrompt(query)}},
		MaxOutputTokens: gc.FallbackMaxOutputTokens,
		Temperature:     gc.Temperature,
	})
	if err == nil {
		return markdown.Render(text)
	}
	b.log.ErrorContext(ctx, "All chat models failed",
		logger.StringField("fallback_model", gc.FallbackModel), logger.ErrorField(err))

	return repository.BuildDiagnosticMessage(gc.Model, gc.FallbackModel, primaryErr)
}

// conversationTurns drops leading model turns; a conversation sent to the model
// has to open with the user.
func conversationTurns(history []entity.ChatMessage) []entity.ChatMessage {
	i := 0
	for i < len(history) && history[i].Role == entity.ChatRoleModel {
		i++
	}
	out := make([]entity.ChatMessage, 0, len(history)-i+1)
	return append(out, history[i:]...)
}
