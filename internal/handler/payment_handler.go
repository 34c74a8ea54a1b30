package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	"github.com/noah-isme/attendance-ledger-api/internal/service"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
	"github.com/noah-isme/attendance-ledger-api/pkg/response"
)

type paymentLedger interface {
	RegisterPayment(ctx context.Context, req service.RegisterPaymentRequest) (*models.PaymentRecord, error)
}

// PaymentHandler records payments.
type PaymentHandler struct {
	service paymentLedger
}

// NewPaymentHandler builds a new handler.
func NewPaymentHandler(service paymentLedger) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Create godoc
// @Summary Register a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.RegisterPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payment payload"))
		return
	}
	payment, err := h.service.RegisterPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}
