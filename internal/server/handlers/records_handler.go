package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/repository/sqlstore"
	"github.com/mamadbah2/farmledger/internal/service/records"
	"github.com/mamadbah2/farmledger/internal/validation"
)

const maxPageSize = 100

// RecordService is the record use-case surface consumed by the HTTP layer.
type RecordService interface {
	Create(ctx context.Context, principal models.Principal, sub validation.RecordSubmission) (*models.DailyRecord, error)
	Update(ctx context.Context, principal models.Principal, id string, sub validation.RecordSubmission) (*models.DailyRecord, error)
	Delete(ctx context.Context, principal models.Principal, id string) error
	Get(ctx context.Context, principal models.Principal, id string) (*models.DailyRecord, error)
	List(ctx context.Context, principal models.Principal, filter sqlstore.RecordFilter) (records.Page, error)
	Expenses(ctx context.Context, principal models.Principal, recordID string) ([]models.ExpenseLine, error)
}

// RecordHandler serves daily records and their expense lines.
type RecordHandler struct {
	svc    RecordService
	loc    *time.Location
	logger *zap.Logger
}

// NewRecordHandler constructs the HTTP handler adapter.
func NewRecordHandler(svc RecordService, loc *time.Location, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecordHandler{svc: svc, loc: loc, logger: logger}
}

// List returns a page of the caller's records, newest first.
func (h *RecordHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	filter := sqlstore.RecordFilter{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 10),
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	var details []validation.FieldError
	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := strings.TrimSpace(c.Query(bound.key))
		if raw == "" {
			continue
		}
		day, err := models.ParseDay(raw, h.loc)
		if err != nil {
			details = append(details, validation.FieldError{Field: bound.key, Message: "must be a valid date (YYYY-MM-DD)"})
			continue
		}
		*bound.dest = &day
	}
	if len(details) > 0 {
		badRequest(c, "invalid query parameters", details...)
		return
	}

	page, err := h.svc.List(c.Request.Context(), p, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       page.Records,
		"pagination": page.Pagination,
	})
}

// Get returns one record with its expense lines.
func (h *RecordHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	record, err := h.svc.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, record, "")
}

// Create stores a new daily record.
func (h *RecordHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var sub validation.RecordSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.logger.Debug("invalid record payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	record, err := h.svc.Create(c.Request.Context(), p, sub)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, record, "record created")
}

// Update replaces a record and its expense lines.
func (h *RecordHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var sub validation.RecordSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.logger.Debug("invalid record payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	record, err := h.svc.Update(c.Request.Context(), p, c.Param("id"), sub)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, record, "record updated")
}

// Delete removes a record.
func (h *RecordHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nil, "record deleted")
}

// Expenses lists the expense lines of the record named by ?recordId=.
func (h *RecordHandler) Expenses(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	recordID := strings.TrimSpace(c.Query("recordId"))
	if recordID == "" {
		badRequest(c, "invalid query parameters", validation.FieldError{Field: "recordId", Message: "is required"})
		return
	}

	lines, err := h.svc.Expenses(c.Request.Context(), p, recordID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, lines, "")
}

// queryInt reads a positive integer query parameter, falling back when absent or invalid.
func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
