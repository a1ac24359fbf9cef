package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/service/settings"
)

// SettingsService manages the per-user farm profile.
type SettingsService interface {
	Get(ctx context.Context, principal models.Principal) (*models.FarmSettings, error)
	Create(ctx context.Context, principal models.Principal, in settings.Input) (*models.FarmSettings, error)
	Update(ctx context.Context, principal models.Principal, in settings.Input) (*models.FarmSettings, error)
}

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	svc    SettingsService
	logger *zap.Logger
}

// NewSettingsHandler constructs the HTTP handler adapter.
func NewSettingsHandler(svc SettingsService, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{svc: svc, logger: logger}
}

// Get returns the caller's settings or null.
func (h *SettingsHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	current, err := h.svc.Get(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondNullable(c, current)
}

// Create stores the first profile.
func (h *SettingsHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var in settings.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.svc.Create(c.Request.Context(), p, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, created, "settings created")
}

// Update overwrites the profile.
func (h *SettingsHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var in settings.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), p, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, updated, "settings updated")
}
