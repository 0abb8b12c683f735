package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/checkout"
	"github.com/DiwanMalla/BrainiX-sub004/internal/config"
	"github.com/DiwanMalla/BrainiX-sub004/internal/mocks"
	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/DiwanMalla/BrainiX-sub004/internal/payments"
)

const webhookTestSecret = "whsec_handler_test"

func webhookRouter(store *mocks.MockStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handlers{
		Cfg:      &config.Config{WebhookSecret: webhookTestSecret},
		Checkout: checkout.NewService(store, new(mocks.MockVerifier), nil),
	}
	r := gin.New()
	r.POST("/v1/webhooks/payment", h.PaymentWebhook)
	return r
}

func signedRequest(payload []byte, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature",
		payments.SignatureHeader(payload, time.Now().Unix(), secret))
	return req
}

const succeededPayload = `{
	"id": "evt_1",
	"type": "payment_intent.succeeded",
	"data": {"object": {"id": "pi_55", "status": "succeeded", "amount": 8000,
		"metadata": {"userId": "7", "courseIds": "11"}}}
}`

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	store := new(mocks.MockStore)
	r := webhookRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(succeededPayload), "whsec_wrong"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid webhook signature")
	store.AssertNotCalled(t, "OrderExistsByPaymentID", mock.Anything, mock.Anything)
}

func TestPaymentWebhookDuplicateIsAcknowledged(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("OrderExistsByPaymentID", mock.Anything, "pi_55").Return(true, nil)
	r := webhookRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(succeededPayload), webhookTestSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_PROCESSED")
}

func TestPaymentWebhookCompletesOrder(t *testing.T) {
	discounted := 80.0
	store := new(mocks.MockStore)
	store.On("OrderExistsByPaymentID", mock.Anything, "pi_55").Return(false, nil)
	store.On("CourseLines", mock.Anything, []int64{11}).Return([]models.CartLine{
		{CourseID: 11, Title: "Go From Scratch", Price: 100, DiscountPrice: &discounted},
	}, nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(nil)
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	store.On("UpsertEnrollment", mock.Anything, int64(7), int64(11)).Return(true, nil)
	store.On("IncrementCourseStudents", mock.Anything, int64(11)).Return(nil)
	store.On("AddStudentTotals", mock.Anything, int64(7), 1, 80.0).Return(nil)
	store.On("ClearCart", mock.Anything, int64(7)).Return(nil)
	r := webhookRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(succeededPayload), webhookTestSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "COMPLETED")
	store.AssertExpectations(t)
}

func TestPaymentWebhookMalformedPayload(t *testing.T) {
	r := webhookRouter(new(mocks.MockStore))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest([]byte(`{"id":"evt_1"}`), webhookTestSecret))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
