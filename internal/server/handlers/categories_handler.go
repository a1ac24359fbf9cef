package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/service/categories"
	"github.com/mamadbah2/farmledger/internal/validation"
)

// CategoryService manages expense categories.
type CategoryService interface {
	List(ctx context.Context, includeInactive bool) ([]models.ExpenseCategory, error)
	Create(ctx context.Context, principal models.Principal, in categories.Input) (*models.ExpenseCategory, error)
	Update(ctx context.Context, principal models.Principal, id string, in categories.Input) (*models.ExpenseCategory, error)
	SetActive(ctx context.Context, principal models.Principal, id string, active bool) (*models.ExpenseCategory, error)
}

// CategoryHandler serves the expense category catalogue.
type CategoryHandler struct {
	svc    CategoryService
	logger *zap.Logger
}

// NewCategoryHandler constructs the HTTP handler adapter.
func NewCategoryHandler(svc CategoryService, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{svc: svc, logger: logger}
}

// List returns categories; ?includeInactive=true also returns disabled ones.
func (h *CategoryHandler) List(c *gin.Context) {
	if _, ok := principal(c); !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), c.Query("includeInactive") == "true")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, items, "")
}

// Create adds a category.
func (h *CategoryHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var in categories.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	category, err := h.svc.Create(c.Request.Context(), p, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, category, "category created")
}

// Update renames a category.
func (h *CategoryHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var in categories.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	category, err := h.svc.Update(c.Request.Context(), p, c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, category, "category updated")
}

// Toggle enables or disables a category from a {"active": bool} body.
func (h *CategoryHandler) Toggle(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Active == nil {
		badRequest(c, "invalid request body", validation.FieldError{Field: "active", Message: "must be a boolean"})
		return
	}

	category, err := h.svc.SetActive(c.Request.Context(), p, c.Param("id"), *body.Active)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, category, "category updated")
}
