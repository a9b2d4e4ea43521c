package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"carbonyx/internal/domain/emissions"
	"carbonyx/internal/infrastructure/http/v1/dto"
)

// ReportBuilder builds dashboard reports.
type ReportBuilder interface {
	BuildReport(ctx context.Context, orgID string) (*emissions.DataOutput, error)
	Windows() (main, prevMonth, prevYear emissions.Range)
}

// EmissionsHandler handles emissions report and recording requests.
type EmissionsHandler struct {
	*BaseHandler
	reports ReportBuilder
	ledger  *emissions.Ledger
}

// NewEmissionsHandler creates a new emissions handler.
// ledger may be nil, in which case recording endpoints are not registered.
func NewEmissionsHandler(reports ReportBuilder, ledger *emissions.Ledger) *EmissionsHandler {
	return &EmissionsHandler{
		BaseHandler: NewBaseHandler(),
		reports:     reports,
		ledger:      ledger,
	}
}

// CanRecord reports whether recording endpoints are available.
func (h *EmissionsHandler) CanRecord() bool { return h.ledger != nil }

// Report returns monthly and yearly chart data for the caller's organization.
// GET /api/v1/emissions/report
func (h *EmissionsHandler) Report(c *gin.Context) {
	out, err := h.reports.BuildReport(c.Request.Context(), h.OrgID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// Periods returns the windows the next report would query.
// GET /api/v1/emissions/periods
func (h *EmissionsHandler) Periods(c *gin.Context) {
	h.OK(c, dto.NewPeriodsResponse(h.reports.Windows()))
}

// RecordActivity stores one activity record against an effective factor.
// POST /api/v1/emissions/activities
func (h *EmissionsHandler) RecordActivity(c *gin.Context) {
	var req dto.ActivityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.ledger.RecordActivity(c.Request.Context(), h.OrgID(c), req.FactorID, req.Value, timeOrZero(req.RecordedAt))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, a.ID)
}

// RecordOffset stores one offset purchase.
// POST /api/v1/emissions/offsets
func (h *EmissionsHandler) RecordOffset(c *gin.Context) {
	var req dto.OffsetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.ledger.RecordOffset(c.Request.Context(), h.OrgID(c), req.TCO2e, req.PricePerTCO2e, timeOrZero(req.PurchasedAt))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, o.ID)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
