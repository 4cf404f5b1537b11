package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/streamchat/chat-service/internal/core/cache"
	"github.com/streamchat/chat-service/internal/domain/models"
)

const (
	modelCatalogCacheKey = "models:catalog"
	modelCatalogCacheTTL = 10 * time.Minute
)

// ModelsHandler serves the model catalog.
type ModelsHandler struct {
	cache cache.Cache
}

// NewModelsHandler creates a new ModelsHandler.
func NewModelsHandler(cacheClient cache.Cache) *ModelsHandler {
	return &ModelsHandler{cache: cacheClient}
}

// ListModelsResponse represents the model catalog response.
type ListModelsResponse struct {
	Models []models.ModelConfig `json:"models"`
}

// ListModels handles GET /chat/models
// @Summary List available models
// @Description Returns the model catalog with capabilities and pricing
// @Tags Models
// @Produce json
// @Success 200 {object} ListModelsResponse
// @Security BearerAuth
// @Router /api/v1/chat/models [get]
func (h *ModelsHandler) ListModels(c *gin.Context) {
	ctx := c.Request.Context()

	// The catalog is static, but the cached rendering keeps the hot path
	// off repeated marshalling and mirrors how a dynamic catalog would be
	// served later.
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, modelCatalogCacheKey); err == nil && cached != nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
	}

	resp := ListModelsResponse{Models: models.Catalog}
	payload, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, modelCatalogCacheKey, payload, modelCatalogCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache model catalog")
		}
	}

	c.Data(http.StatusOK, "application/json", payload)
}
