package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamchat/chat-service/internal/api/middleware"
	"github.com/streamchat/chat-service/internal/core/docdb"
	"github.com/streamchat/chat-service/internal/domain/errors"
	"github.com/streamchat/chat-service/internal/domain/models"
)

// PreferencesHandler handles user preference endpoints.
type PreferencesHandler struct {
	docDBClient docdb.Client
}

// NewPreferencesHandler creates a new PreferencesHandler.
func NewPreferencesHandler(docDBClient docdb.Client) *PreferencesHandler {
	return &PreferencesHandler{docDBClient: docDBClient}
}

// GetPreferences handles GET /chat/preferences
// @Summary Get user preferences
// @Description Returns the caller's preferences, or defaults when none are stored
// @Tags Preferences
// @Produce json
// @Success 200 {object} models.UserPreferences
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/chat/preferences [get]
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	user := middleware.GetAuthUser(c)

	prefs, err := h.docDBClient.Preferences().Get(c.Request.Context(), user.UID)
	if err != nil {
		middleware.HandleError(c, errors.NewStorageError("get preferences", err))
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferencesRequest represents a partial preferences update.
// Omitted fields keep their stored value.
type UpdatePreferencesRequest struct {
	PinnedModels      *[]string         `json:"pinnedModels"`
	Theme             *string           `json:"theme" binding:"omitempty,oneof=light dark system"`
	LastSelectedModel *string           `json:"lastSelectedModel"`
	Apps              *[]models.UserApp `json:"apps"`
}

// UpdatePreferences handles PATCH /chat/preferences
// @Summary Update user preferences
// @Description Applies a partial preferences update and returns the merged result
// @Tags Preferences
// @Accept json
// @Produce json
// @Param request body UpdatePreferencesRequest true "Fields to update"
// @Success 200 {object} models.UserPreferences
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/chat/preferences [patch]
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	user := middleware.GetAuthUser(c)

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	merged, err := h.docDBClient.Preferences().Merge(c.Request.Context(), user.UID, &docdb.PreferencesPatch{
		PinnedModels:      req.PinnedModels,
		Theme:             req.Theme,
		LastSelectedModel: req.LastSelectedModel,
		Apps:              req.Apps,
	})
	if err != nil {
		middleware.HandleError(c, errors.NewStorageError("update preferences", err))
		return
	}

	c.JSON(http.StatusOK, merged)
}
