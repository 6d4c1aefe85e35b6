package repository

import (
	"fmt"
	"strings"

	"market-dashboard/internal/entity"
)

const assistantPreamble = `You are a helpful assistant for a cryptocurrency and financial dashboard app called Crypton.
Help the user with their questions about cryptocurrency, stocks, trading, and investment strategies.
Be concise and informative.

You can use markdown formatting:
- Use **bold** for emphasis
- Use *italic* for definitions
- Use ` + "`code`" + ` for technical terms or code
- Use bullet points or numbered lists for steps or features
- Use tables to organize data when appropriate

Keep your responses well-structured but concise.`

// BuildChatQueryPrompt prefixes the user query with the assistant preamble. It is
// sent as the last turn of a conversation.
func BuildChatQueryPrompt(query string) string {
	return fmt.Sprintf("%s\n\nUser query: %s", assistantPreamble, query)
}

// BuildTranscriptPrompt flattens the conversation into a single prompt for direct
// generation.
func BuildTranscriptPrompt(history []entity.ChatMessage, query string) string {
	var sb strings.Builder
	sb.WriteString(assistantPreamble)
	sb.WriteString("\n\nPrevious conversation:\n")
	for i, m := range history {
		speaker := "User"
		if m.Role == entity.ChatRoleModel {
			speaker = "Assistant"
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(speaker + ": " + m.Text)
	}
	sb.WriteString(fmt.Sprintf("\n\nUser: %s\nAssistant:", query))
	return sb.String()
}

// BuildSimplePrompt is the history-free prompt used with the fallback model.
func BuildSimplePrompt(query string) string {
	return fmt.Sprintf(`You are a helpful cryptocurrency assistant for an app called Crypton.
Please answer this question concisely: %s

Use markdown formatting like **bold**, *italic*, `+"`code`"+`, and bullet points when helpful.`, query)
}

// BuildDiagnosticMessage is shown in place of a reply when every model failed.
func BuildDiagnosticMessage(primaryModel, fallbackModel string, primaryErr error) string {
	detail := "unknown error"
	if primaryErr != nil {
		detail = primaryErr.Error()
	}
	return fmt.Sprintf(`Sorry, I couldn't connect to the Google AI service.

This could be due to one of these issues:
1. The API key might be invalid or have insufficient permissions
2. The model names have changed (tried "%s" and "%s")
3. You may need to update the Gemini client library
4. There might be network connectivity issues

Error details: %s`, primaryModel, fallbackModel, detail)
}
