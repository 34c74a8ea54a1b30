package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	"github.com/noah-isme/attendance-ledger-api/internal/service"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/response"
)

type rosterService interface {
	Courses() []models.Course
	ListChildren(ctx context.Context) ([]models.Child, error)
	RegisterChild(ctx context.Context, req service.RegisterChildRequest) (*models.Child, error)
}

// ChildHandler exposes the roster and its course catalogue.
type ChildHandler struct {
	service rosterService
}

// NewChildHandler builds a new handler.
func NewChildHandler(service rosterService) *ChildHandler {
	return &ChildHandler{service: service}
}

// Courses godoc
// @Summary List courses
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *ChildHandler) Courses(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Courses())
}

// List godoc
// @Summary List children sorted by course
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /children [get]
func (h *ChildHandler) List(c *gin.Context) {
	children, err := h.service.ListChildren(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, map[string]interface{}{"total": len(children)})
}

// Create godoc
// @Summary Register a child
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.RegisterChildRequest true "Child payload"
// @Success 201 {object} response.Envelope
// @Router /children [post]
func (h *ChildHandler) Create(c *gin.Context) {
	var req service.RegisterChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid child payload"))
		return
	}
	child, err := h.service.RegisterChild(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, child)
}
