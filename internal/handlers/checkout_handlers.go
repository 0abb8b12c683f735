package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/checkout"
	"github.com/DiwanMalla/BrainiX-sub004/internal/payments"
	"github.com/gin-gonic/gin"
)

//
// --- Checkout (synchronous path) ---
//

// CheckoutInput defines the JSON for POST /v1/checkout. ClientTotal is
// what the client displayed to the user; the server recomputes and
// cross-checks it.
type CheckoutInput struct {
	PaymentIntentID string          `json:"paymentIntentId" binding:"required"`
	PromoCode       string          `json:"promoCode"`
	BillingAddress  json.RawMessage `json:"billingAddress" binding:"required"`
	ClientTotal     *float64        `json:"clientTotal" binding:"required"`
}

// CreateOrder is the handler for POST /v1/checkout
func (h *Handlers) CreateOrder(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result, err := h.Checkout.Checkout(c.Request.Context(), checkout.CheckoutInput{
		UserID:          userID,
		PaymentIntentID: input.PaymentIntentID,
		PromoCode:       input.PromoCode,
		BillingAddress:  input.BillingAddress,
		ClientTotal:     *input.ClientTotal,
	})
	if err != nil {
		h.respondCheckoutError(c, userID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Order created successfully",
		"orderId":     result.Order.ID,
		"orderNumber": result.Order.OrderNumber,
		"total":       result.Order.Total,
		"discount":    result.Order.Discount,
		"enrollments": result.NewEnrollments,
	})
}

// respondCheckoutError maps checkout sentinels onto HTTP statuses.
// Business-rule failures get a descriptive message; everything else is
// reported generically and logged with full context.
func (h *Handlers) respondCheckoutError(c *gin.Context, userID int64, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrTotalMismatch),
		errors.Is(err, checkout.ErrInvalidCoupon),
		errors.Is(err, checkout.ErrCouponUsageExceeded),
		errors.Is(err, checkout.ErrBelowMinimumOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrPaymentNotConfirmed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrPaymentProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case strings.Contains(err.Error(), "payment verification"):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not verify payment with the processor"})
	default:
		log.Printf("Checkout failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Order creation failed"})
	}
}

//
// --- Payment Confirmation Gateway (webhook path) ---
//

// PaymentWebhook is the handler for POST /v1/webhooks/payment. The
// processor signs each delivery; nothing in the body is trusted until
// the signature checks out.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := payments.VerifySignature(payload, sigHeader, h.Cfg.WebhookSecret, time.Now()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	event, err := payments.ParseEvent(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, result, err := h.Checkout.HandlePaymentEvent(c.Request.Context(), event)
	if err != nil {
		// 500 tells the processor to redeliver; the idempotency check
		// makes the retry safe.
		log.Printf("Webhook %s (%s) failed: %v", event.ID, event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event processing failed"})
		return
	}

	resp := gin.H{"received": true, "outcome": string(outcome)}
	if result != nil {
		resp["orderNumber"] = result.Order.OrderNumber
	}
	c.JSON(http.StatusOK, resp)
}
