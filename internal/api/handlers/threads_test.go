package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/streamchat/chat-service/internal/api/handlers"
	"github.com/streamchat/chat-service/internal/api/middleware"
	"github.com/streamchat/chat-service/internal/core/docdb"
	"github.com/streamchat/chat-service/internal/domain/models"
	"github.com/streamchat/chat-service/internal/services/identity"
	"github.com/streamchat/chat-service/tests/mocks"
)

func newThreadsRouter(t *testing.T, db *mocks.MockDocDBClient) *gin.Engine {
	t.Helper()

	verifier := &mocks.MockVerifier{}
	verifier.On("Verify", mock.Anything, "test-token").
		Return(&identity.AuthUser{UID: "user-1"}, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := handlers.NewThreadsHandler(db)
	auth := middleware.NewAuthMiddleware(verifier)
	r.GET("/api/v1/chat/threads", auth.Authenticate(), handler.ListThreads)
	r.GET("/api/v1/chat/threads/:threadId", auth.Authenticate(), handler.GetThread)
	r.DELETE("/api/v1/chat/threads/:threadId", auth.Authenticate(), handler.DeleteThread)
	return r
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestListThreads tests the list endpoint with pagination defaults.
func TestListThreads(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	threads := []*models.ChatThread{
		models.NewThread("user-1", "newest"),
		models.NewThread("user-1", "older"),
	}

	var captured *docdb.ListThreadsOptions
	db.ThreadsCollection.On("ListThreads", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*docdb.ListThreadsOptions)
		}).Return(threads, nil)

	router := newThreadsRouter(t, db)
	rec := doRequest(router, http.MethodGet, "/api/v1/chat/threads")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, int64(50), captured.Limit)
	assert.Equal(t, docdb.SortOrderDesc, captured.OrderBy)

	var resp handlers.ListThreadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Threads, 2)
}

// TestGetThread_NotFound tests the 404 path for unknown or foreign
// threads.
func TestGetThread_NotFound(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	db.ThreadsCollection.On("GetThreadWithMessages", mock.Anything, "user-1", "missing").
		Return(nil, nil)

	router := newThreadsRouter(t, db)
	rec := doRequest(router, http.MethodGet, "/api/v1/chat/threads/missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestGetThread_WithMessages tests loading a thread with history.
func TestGetThread_WithMessages(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	thread := models.NewThread("user-1", "hello")
	thread.Messages = []*models.ChatMessage{
		models.NewUserMessage(thread.ID, "user-1", "hello"),
		models.NewAssistantMessage(thread.ID, "user-1", "hi", "openai/gpt-4o"),
	}
	db.ThreadsCollection.On("GetThreadWithMessages", mock.Anything, "user-1", thread.ID).
		Return(thread, nil)

	router := newThreadsRouter(t, db)
	rec := doRequest(router, http.MethodGet, "/api/v1/chat/threads/"+thread.ID)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.ChatThread
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, thread.ID, got.ID)
	assert.Len(t, got.Messages, 2)
}

// TestDeleteThread tests the cascading delete with ownership check.
func TestDeleteThread(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	thread := models.NewThread("user-1", "doomed")
	db.ThreadsCollection.On("GetThread", mock.Anything, "user-1", thread.ID).Return(thread, nil)
	db.ThreadsCollection.On("DeleteThread", mock.Anything, "user-1", thread.ID).
		Return(int64(7), nil)

	router := newThreadsRouter(t, db)
	rec := doRequest(router, http.MethodDelete, "/api/v1/chat/threads/"+thread.ID)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deletedMessages":7`)
}

// TestDeleteThread_NotFound tests that deleting an unknown thread 404s
// without touching storage.
func TestDeleteThread_NotFound(t *testing.T) {
	db := mocks.NewMockDocDBClient()
	db.ThreadsCollection.On("GetThread", mock.Anything, "user-1", "missing").Return(nil, nil)

	router := newThreadsRouter(t, db)
	rec := doRequest(router, http.MethodDelete, "/api/v1/chat/threads/missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	db.ThreadsCollection.AssertNotCalled(t, "DeleteThread", mock.Anything, mock.Anything, mock.Anything)
}
