package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/internal/dashboard/config"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/entity"
	"market-dashboard/pkg/logger"
)

const (
	testPrimaryModel  = "primary-model"
	testFallbackModel = "fallback-model"
)

func newTestChatService(ai *fakeAI, creds *memCredentials) ChatService {
	cfg := &config.Config{Gemini: config.Gemini{
		Model:                   testPrimaryModel,
		MaxOutputTokens:         800,
		FallbackModel:           testFallbackModel,
		FallbackMaxOutputTokens: 500,
		Temperature:             0.7,
		HistoryWindow:           10,
	}}
	return NewChatService(cfg, logger.NewNop(), ai, creds)
}

func TestChatService_MissingCredential(t *testing.T) {
	ai := &fakeAI{}
	svc := newTestChatService(ai, &memCredentials{})

	reply, err := svc.Send(context.Background(), "What is bitcoin?")
	require.NoError(t, err)
	assert.Equal(t, MissingCredentialReply, reply.Text)
	assert.Equal(t, entity.ChatRoleModel, reply.Role)
	assert.Zero(t, ai.calls())

	msgs, err := svc.Messages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "What is bitcoin?", msgs[0].Text)
}

func TestChatService_EmptyMessage(t *testing.T) {
	ai := &fakeAI{}
	svc := newTestChatService(ai, &memCredentials{value: "key"})

	_, err := svc.Send(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, ai.calls())
}

func TestChatService_PrimaryReplyIsRendered(t *testing.T) {
	ai := &fakeAI{results: map[string][]fakeResult{
		testPrimaryModel: {{text: "Bitcoin is **scarce**."}},
	}}
	svc := newTestChatService(ai, &memCredentials{value: "secret"})
	require.NoError(t, svc.SetCredential(context.Background(), "  secret  "))

	reply, err := svc.Send(context.Background(), "Tell me about bitcoin")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "<strong>scarce</strong>")

	require.Equal(t, 1, ai.calls())
	req := ai.requests[0]
	assert.Equal(t, "secret", ai.keys[0])
	assert.Equal(t, testPrimaryModel, req.Model)
	assert.Equal(t, 800, req.MaxOutputTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	// The welcome message is dropped so the conversation opens with the user.
	require.Len(t, req.Contents, 1)
	assert.Equal(t, entity.ChatRoleUser, req.Contents[0].Role)
	assert.Equal(t, repository.BuildChatQueryPrompt("Tell me about bitcoin"), req.Contents[0].Text)
}

func TestChatService_FallbackCascade(t *testing.T) {
	primaryErr := errors.New("quota exceeded")

	t.Run("direct generation on primary model", func(t *testing.T) {
		ai := &fakeAI{results: map[string][]fakeResult{
			testPrimaryModel: {{err: errFakeModel}, {text: "direct answer"}},
		}}
		svc := newTestChatService(ai, &memCredentials{value: "k"})

		reply, err := svc.Send(context.Background(), "hi")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "direct answer")
		require.Equal(t, 2, ai.calls())
		assert.Equal(t, repository.BuildTranscriptPrompt(nil, "hi"), ai.requests[1].Contents[0].Text)
	})

	t.Run("fallback model", func(t *testing.T) {
		ai := &fakeAI{results: map[string][]fakeResult{
			testPrimaryModel:  {{err: errFakeModel}, {err: primaryErr}},
			testFallbackModel: {{text: "fallback answer"}},
		}}
		svc := newTestChatService(ai, &memCredentials{value: "k"})

		reply, err := svc.Send(context.Background(), "hi")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "fallback answer")
		require.Equal(t, 3, ai.calls())
		last := ai.requests[2]
		assert.Equal(t, testFallbackModel, last.Model)
		assert.Equal(t, 500, last.MaxOutputTokens)
		assert.Equal(t, repository.BuildSimplePrompt("hi"), last.Contents[0].Text)
	})

	t.Run("diagnostic when every model fails", func(t *testing.T) {
		ai := &fakeAI{results: map[string][]fakeResult{
			testPrimaryModel: {{err: errFakeModel}, {err: primaryErr}},
		}}
		svc := newTestChatService(ai, &memCredentials{value: "k"})

		reply, err := svc.Send(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, repository.BuildDiagnosticMessage(testPrimaryModel, testFallbackModel, primaryErr), reply.Text)
		assert.Contains(t, reply.Text, "quota exceeded")
		assert.Equal(t, 3, ai.calls())
	})
}

func TestChatService_HistoryWindow(t *testing.T) {
	ai := &fakeAI{results: map[string][]fakeResult{testPrimaryModel: {}}}
	for i := 0; i < 8; i++ {
		ai.results[testPrimaryModel] = append(ai.results[testPrimaryModel], fakeResult{text: fmt.Sprintf("answer %d", i)})
	}
	svc := newTestChatService(ai, &memCredentials{})
	require.NoError(t, svc.SetCredential(context.Background(), "k"))

	for i := 0; i < 8; i++ {
		_, err := svc.Send(context.Background(), fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	msgs, err := svc.Messages(context.Background())
	require.NoError(t, err)
	// welcome + 8 questions + 8 answers
	require.Len(t, msgs, 17)

	// The last call saw the 10 messages before "question 7" plus the query turn.
	last := ai.requests[len(ai.requests)-1]
	require.Len(t, last.Contents, 11)
	assert.Equal(t, "question 2", last.Contents[0].Text)
	assert.Contains(t, last.Contents[9].Text, "answer 6")
	assert.Equal(t, repository.BuildChatQueryPrompt("question 7"), last.Contents[10].Text)
}

func TestChatService_Credential(t *testing.T) {
	ctx := context.Background()
	creds := &memCredentials{}
	svc := newTestChatService(&fakeAI{}, creds)

	ok, err := svc.HasCredential(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	msgs, err := svc.Messages(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.ErrorIs(t, svc.SetCredential(ctx, "   "), ErrEmptyCredential)

	_, _ = svc.Send(ctx, "hello")
	require.NoError(t, svc.SetCredential(ctx, " abc "))
	assert.Equal(t, "abc", creds.value)

	msgs, err = svc.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeMessage, msgs[0].Text)

	require.NoError(t, svc.ClearCredential(ctx))
	ok, err = svc.HasCredential(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	svc.ClearMessages()
	msgs, err = svc.Messages(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestConversationTurns(t *testing.T) {
	history := []entity.ChatMessage{
		{Role: entity.ChatRoleModel, Text: "welcome"},
		{Role: entity.ChatRoleUser, Text: "q"},
		{Role: entity.ChatRoleModel, Text: "a"},
	}
	turns := conversationTurns(history)
	require.Len(t, turns, 2)
	assert.Equal(t, "q", turns[0].Text)

	assert.Empty(t, conversationTurns(history[:1]))
}
