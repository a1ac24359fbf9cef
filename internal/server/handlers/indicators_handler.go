package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/export"
	"github.com/mamadbah2/farmledger/internal/service/reporting"
	"github.com/mamadbah2/farmledger/internal/validation"
)

const (
	maxWindowDays   = 366
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// IndicatorService computes dashboard figures.
type IndicatorService interface {
	Today(ctx context.Context, principal models.Principal) (*models.DailyIndicators, error)
	Range(ctx context.Context, principal models.Principal, days int) (models.WeeklyIndicators, error)
}

// IndicatorHandler serves the dashboard indicators.
type IndicatorHandler struct {
	svc    IndicatorService
	logger *zap.Logger
}

// NewIndicatorHandler constructs the HTTP handler adapter.
func NewIndicatorHandler(svc IndicatorService, logger *zap.Logger) *IndicatorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndicatorHandler{svc: svc, logger: logger}
}

// Get answers ?type=today (default) or ?type=weekly&days=N.
func (h *IndicatorHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	switch kind := c.DefaultQuery("type", "today"); kind {
	case "today":
		indicators, err := h.svc.Today(c.Request.Context(), p)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		respondNullable(c, indicators)

	case "weekly":
		days, ok := windowDays(c)
		if !ok {
			return
		}

		indicators, err := h.svc.Range(c.Request.Context(), p, days)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		respond(c, http.StatusOK, indicators, "")

	default:
		badRequest(c, "invalid query parameters", validation.FieldError{Field: "type", Message: "must be one of today, weekly"})
	}
}

// Export downloads the ?days=N window as an XLSX workbook.
func (h *IndicatorHandler) Export(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	days, ok := windowDays(c)
	if !ok {
		return
	}

	indicators, err := h.svc.Range(c.Request.Context(), p, days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteIndicators(&buf, indicators); err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("indicators-%s-%s.xlsx", indicators.From, indicators.To)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// windowDays reads ?days=, answering 400 itself when the value is unusable.
func windowDays(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return reporting.DefaultWindowDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 || days > maxWindowDays {
		badRequest(c, "invalid query parameters", validation.FieldError{
			Field:   "days",
			Message: fmt.Sprintf("must be an integer between 0 and %d", maxWindowDays),
		})
		return 0, false
	}
	return days, true
}
