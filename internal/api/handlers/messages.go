package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamchat/chat-service/internal/api/middleware"
	"github.com/streamchat/chat-service/internal/api/sse"
	"github.com/streamchat/chat-service/internal/domain/errors"
	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/chat"
	"github.com/streamchat/chat-service/internal/services/provider"
)

// MessagesHandler handles message send and stream endpoints.
type MessagesHandler struct {
	chatService *chat.Service
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(chatService *chat.Service) *MessagesHandler {
	return &MessagesHandler{chatService: chatService}
}

// SendMessageRequest represents the request body for sending a message.
// ThreadID is optional: omitting it starts a new thread titled from the
// message content.
type SendMessageRequest struct {
	ThreadID        string                   `json:"threadId"`
	Content         string                   `json:"content" binding:"omitempty,max=32000"`
	ImageURL        string                   `json:"imageUrl"`
	Images          []models.ImageAttachment `json:"images" binding:"omitempty,max=4"`
	ModelID         string                   `json:"modelId" binding:"required"`
	UseReasoning    bool                     `json:"useReasoning"`
	ReasoningEffort string                   `json:"reasoningEffort" binding:"omitempty,oneof=low medium high"`
}

func (r *SendMessageRequest) toChatRequest(userID string) *chat.Request {
	return &chat.Request{
		UserID:          userID,
		ThreadID:        r.ThreadID,
		Content:         r.Content,
		ImageURL:        r.ImageURL,
		Images:          r.Images,
		ModelID:         r.ModelID,
		UseReasoning:    r.UseReasoning,
		ReasoningEffort: provider.ReasoningEffort(r.ReasoningEffort),
	}
}

// SendMessage handles POST /chat/messages
// @Summary Send a message
// @Description Sends a message and waits for the complete model response
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body SendMessageRequest true "Message to send"
// @Success 200 {object} chat.SendResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/chat/messages [post]
func (h *MessagesHandler) SendMessage(c *gin.Context) {
	user := middleware.GetAuthUser(c)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.chatService.Send(c.Request.Context(), req.toChatRequest(user.UID))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// StreamMessage handles POST /chat/messages/stream
// @Summary Stream a message exchange
// @Description Sends a message and streams the model response as Server-Sent Events
// @Tags Messages
// @Accept json
// @Produce text/event-stream
// @Param request body SendMessageRequest true "Message to send"
// @Success 200 {string} string "SSE stream of chat events"
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/chat/messages/stream [post]
func (h *MessagesHandler) StreamMessage(c *gin.Context) {
	user := middleware.GetAuthUser(c)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	chatReq := req.toChatRequest(user.UID)

	// Validation failures surface as plain HTTP errors; once the SSE
	// headers go out, errors can only travel as error events.
	if err := chatReq.Validate(); err != nil {
		middleware.HandleError(c, err)
		return
	}

	writer, err := sse.NewWriter(c.Writer)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("streaming not supported", err))
		return
	}

	h.chatService.Stream(c.Request.Context(), chatReq, writer)
}
