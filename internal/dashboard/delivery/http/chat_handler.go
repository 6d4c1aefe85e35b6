package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"market-dashboard/internal/dashboard/dto"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/pkg/logger"
)

// ChatHandler handles HTTP requests for the assistant.
type ChatHandler struct {
	chat   service.ChatService
	logger *logger.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat service.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers the chat routes to the Echo group.
func (h *ChatHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Send)
	g.GET("/messages", h.GetMessages)
	g.DELETE("/messages", h.ClearMessages)

	g.GET("/credential", h.GetCredential)
	g.PUT("/credential", h.SetCredential)
	g.DELETE("/credential", h.ClearCredential)
}

// Send godoc
// @Summary Send a message to the assistant
// @Description The reply is HTML rendered from the model's markdown. Model failures yield a diagnostic reply, not an error
// @Tags chat
// @Accept  json
// @Produce  json
// @Param   request  body    dto.ChatRequest  true  "Message"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/chat [post]
func (h *ChatHandler) Send(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	reply, err := h.chat.Send(c.Request().Context(), req.Message)
	if err != nil {
		return respondError(c, h.logger, "Failed to process message", err)
	}
	return c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply})
}

// GetMessages godoc
// @Summary Get the chat transcript
// @Tags chat
// @Produce  json
// @Success 200 {array} entity.ChatMessage
// @Router /v1/chat/messages [get]
func (h *ChatHandler) GetMessages(c echo.Context) error {
	msgs, err := h.chat.Messages(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "Failed to get messages", err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// ClearMessages godoc
// @Summary Clear the chat transcript
// @Tags chat
// @Success 204 {object} nil
// @Router /v1/chat/messages [delete]
func (h *ChatHandler) ClearMessages(c echo.Context) error {
	h.chat.ClearMessages()
	return c.NoContent(http.StatusNoContent)
}

// GetCredential godoc
// @Summary Report whether an API key is stored
// @Tags chat
// @Produce  json
// @Success 200 {object} dto.CredentialStatusResponse
// @Router /v1/chat/credential [get]
func (h *ChatHandler) GetCredential(c echo.Context) error {
	ok, err := h.chat.HasCredential(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "Failed to read credential", err)
	}
	return c.JSON(http.StatusOK, dto.CredentialStatusResponse{Set: ok})
}

// SetCredential godoc
// @Summary Store the API key
// @Description Storing a key restarts the transcript with the welcome message
// @Tags chat
// @Accept  json
// @Produce  json
// @Param   request  body    dto.CredentialRequest  true  "API key"
// @Success 200 {object} dto.CredentialStatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/chat/credential [put]
func (h *ChatHandler) SetCredential(c echo.Context) error {
	var req dto.CredentialRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	if err := h.chat.SetCredential(c.Request().Context(), req.APIKey); err != nil {
		return respondError(c, h.logger, "Failed to store credential", err)
	}
	return c.JSON(http.StatusOK, dto.CredentialStatusResponse{Set: true})
}

// ClearCredential godoc
// @Summary Remove the API key
// @Tags chat
// @Success 204 {object} nil
// @Router /v1/chat/credential [delete]
func (h *ChatHandler) ClearCredential(c echo.Context) error {
	if err := h.chat.ClearCredential(c.Request().Context()); err != nil {
		return respondError(c, h.logger, "Failed to clear credential", err)
	}
	return c.NoContent(http.StatusNoContent)
}
