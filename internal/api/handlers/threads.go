package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamchat/chat-service/internal/api/middleware"
	"github.com/streamchat/chat-service/internal/core/docdb"
	"github.com/streamchat/chat-service/internal/domain/errors"
	"github.com/streamchat/chat-service/internal/domain/models"
)

// ThreadsHandler handles thread CRUD endpoints.
type ThreadsHandler struct {
	docDBClient docdb.Client
}

// NewThreadsHandler creates a new ThreadsHandler.
func NewThreadsHandler(docDBClient docdb.Client) *ThreadsHandler {
	return &ThreadsHandler{docDBClient: docDBClient}
}

// ListThreadsRequest represents the query parameters for listing threads.
type ListThreadsRequest struct {
	Limit int64 `form:"limit" binding:"omitempty,min=1,max=100"`
	Skip  int64 `form:"offset" binding:"omitempty,min=0"`
}

// ListThreadsResponse represents the response for listing threads.
type ListThreadsResponse struct {
	Threads []*models.ChatThread `json:"threads"`
	Limit   int64                `json:"limit"`
	Offset  int64                `json:"offset"`
}

// ListThreads handles GET /chat/threads
// @Summary List threads
// @Description Lists the caller's chat threads, most recently updated first
// @Tags Threads
// @Produce json
// @Param limit query int false "Maximum number of threads" default(50) minimum(1) maximum(100)
// @Param offset query int false "Offset for pagination" default(0) minimum(0)
// @Success 200 {object} ListThreadsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/chat/threads [get]
func (h *ThreadsHandler) ListThreads(c *gin.Context) {
	user := middleware.GetAuthUser(c)

	var req ListThreadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid query parameters", err.Error()))
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	threads, err := h.docDBClient.Threads().ListThreads(c.Request.Context(), &docdb.ListThreadsOptions{
		UserID:  user.UID,
		Limit:   req.Limit,
		Skip:    req.Skip,
		OrderBy: docdb.SortOrderDesc,
	})
	if err != nil {
		middleware.HandleError(c, errors.NewStorageError("list threads", err))
		return
	}

	c.JSON(http.StatusOK, ListThreadsResponse{
		Threads: threads,
		Limit:   req.Limit,
		Offset:  req.Skip,
	})
}

// GetThread handles GET /chat/threads/:threadId
// @Summary Get a thread
// @Description Retrieves one thread with its messages in chronological order
// @Tags Threads
// @Produce json
// @Param threadId path string true "Thread ID"
// @Success 200 {object} models.ChatThread
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/chat/threads/{threadId} [get]
func (h *ThreadsHandler) GetThread(c *gin.Context) {
	user := middleware.GetAuthUser(c)
	threadID := c.Param("threadId")

	thread, err := h.docDBClient.Threads().GetThreadWithMessages(c.Request.Context(), user.UID, threadID)
	if err != nil {
		middleware.HandleError(c, errors.NewStorageError("get thread", err))
		return
	}
	if thread == nil {
		middleware.HandleError(c, errors.NewNotFoundError("thread", threadID))
		return
	}

	c.JSON(http.StatusOK, thread)
}

// DeleteThread handles DELETE /chat/threads/:threadId
// @Summary Delete a thread
// @Description Deletes a thread and all of its messages
// @Tags Threads
// @Produce json
// @Param threadId path string true "Thread ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/chat/threads/{threadId} [delete]
func (h *ThreadsHandler) DeleteThread(c *gin.Context) {
	user := middleware.GetAuthUser(c)
	threadID := c.Param("threadId")

	// Ownership check happens before the cascading delete so a foreign
	// thread ID 404s instead of silently deleting nothing.
	thread, err := h.docDBClient.Threads().GetThread(c.Request.Context(), user.UID, threadID)
	if err != nil {
		middleware.HandleError(c, errors.NewStorageError("get thread", err))
		return
	}
	if thread == nil {
		middleware.HandleError(c, errors.NewNotFoundError("thread", threadID))
		return
	}

	deleted, err := h.docDBClient.Threads().DeleteThread(c.Request.Context(), user.UID, threadID)
	if err != nil {
		middleware.HandleError(c, errors.NewStorageError("delete thread", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threadId":        threadID,
		"deletedMessages": deleted,
	})
}
