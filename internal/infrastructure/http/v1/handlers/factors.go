package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carbonyx/internal/domain/factors"
	"carbonyx/internal/infrastructure/http/v1/dto"
)

// FactorService is the factor catalogue as used over HTTP.
type FactorService interface {
	ListEffective(ctx context.Context, orgID string) ([]factors.EffectiveFactor, error)
	Effective(ctx context.Context, orgID string, id int64) (*factors.EffectiveFactor, error)
	Add(ctx context.Context, orgID string, in factors.Input) (*factors.Factor, error)
	Edit(ctx context.Context, orgID string, id int64, in factors.Input) (*factors.Factor, error)
	Delete(ctx context.Context, orgID string, id int64) (*factors.Factor, error)
}

// FactorsHandler handles factor catalogue requests.
type FactorsHandler struct {
	*BaseHandler
	service FactorService
}

// NewFactorsHandler creates a new factors handler.
func NewFactorsHandler(service FactorService) *FactorsHandler {
	return &FactorsHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List returns the effective factors of the caller's organization.
// GET /api/v1/factors
func (h *FactorsHandler) List(c *gin.Context) {
	items, err := h.service.ListEffective(c.Request.Context(), h.OrgID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Get returns one effective factor.
// GET /api/v1/factors/:id
func (h *FactorsHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.service.Effective(c.Request.Context(), h.OrgID(c), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Create adds a custom factor or an override of a central factor.
// POST /api/v1/factors
func (h *FactorsHandler) Create(c *gin.Context) {
	var req dto.FactorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Add(c.Request.Context(), h.OrgID(c), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromFactor(created))
}

// Update edits an organization factor, or overrides a central one.
// PUT /api/v1/factors/:id
func (h *FactorsHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.FactorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.Edit(c.Request.Context(), h.OrgID(c), id, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromFactor(updated))
}

// Delete removes an organization factor.
// DELETE /api/v1/factors/:id
func (h *FactorsHandler) Delete(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.Delete(c.Request.Context(), h.OrgID(c), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
