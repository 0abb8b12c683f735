package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DiwanMalla/BrainiX-sub004/internal/mocks"
	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/DiwanMalla/BrainiX-sub004/internal/payments"
	"github.com/DiwanMalla/BrainiX-sub004/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testUserID = int64(7)

func discountedLine() []models.CartLine {
	discounted := 80.0
	return []models.CartLine{
		{CourseID: 11, Title: "Go From Scratch", Price: 100, DiscountPrice: &discounted},
	}
}

func succeededIntent(id string) *payments.Intent {
	return &payments.Intent{
		ID:            id,
		Status:        payments.StatusSucceeded,
		Currency:      "usd",
		PaymentMethod: "card",
	}
}

// expectHappyTail registers the calls every successful purchase makes
// after the order row itself is in.
func expectHappyTail(store *mocks.MockStore, total float64) {
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	store.On("UpsertEnrollment", mock.Anything, testUserID, int64(11)).Return(true, nil)
	store.On("IncrementCourseStudents", mock.Anything, int64(11)).Return(nil)
	store.On("AddStudentTotals", mock.Anything, testUserID, 1, total).Return(nil)
	store.On("ClearCart", mock.Anything, testUserID).Return(nil)
}

func checkoutInput(total float64) CheckoutInput {
	return CheckoutInput{
		UserID:          testUserID,
		PaymentIntentID: "pi_100",
		BillingAddress:  json.RawMessage(`{"country":"AU"}`),
		ClientTotal:     total,
	}
}

func TestCheckoutUsesDiscountedPrice(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return(discountedLine(), nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = 1 })
	expectHappyTail(store, 80)

	svc := NewService(store, verifier, nil)
	res, err := svc.Checkout(context.Background(), checkoutInput(80))

	assert.NoError(t, err)
	assert.Equal(t, 80.0, res.Order.Total)
	assert.Equal(t, 0.0, res.Order.Discount)
	assert.Equal(t, models.OrderCompleted, res.Order.Status)
	assert.Equal(t, "pi_100", res.Order.PaymentID)
	if assert.Len(t, res.Items, 1) {
		assert.Equal(t, 80.0, res.Items[0].Price)
	}
	assert.Equal(t, 1, res.NewEnrollments)
	store.AssertExpectations(t)
}

func TestCheckoutAppliesPercentageCoupon(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return(discountedLine(), nil)
	store.On("CouponForUpdate", mock.Anything, "SAVE10").
		Return(activeCoupon(models.DiscountPercentage, 10), nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = 2 })
	store.On("IncrementCouponUsage", mock.Anything, int64(1)).Return(nil)
	expectHappyTail(store, 72)

	svc := NewService(store, verifier, nil)
	in := checkoutInput(72)
	in.PromoCode = "save10" // normalized before lookup
	res, err := svc.Checkout(context.Background(), in)

	assert.NoError(t, err)
	assert.Equal(t, 72.0, res.Order.Total)
	assert.Equal(t, 8.0, res.Order.Discount)
	if assert.NotNil(t, res.Order.CouponID) {
		assert.Equal(t, int64(1), *res.Order.CouponID)
	}
	// sum(items) must equal total + discount
	var itemSum float64
	for _, it := range res.Items {
		itemSum += it.Price
	}
	assert.InDelta(t, res.Order.Total+res.Order.Discount, itemSum, TotalEpsilon)
	store.AssertNumberOfCalls(t, "IncrementCouponUsage", 1)
	store.AssertExpectations(t)
}

func TestCheckoutCouponUsageExhausted(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	oneUse := 1
	spent := activeCoupon(models.DiscountPercentage, 10)
	spent.MaxUses = &oneUse
	spent.UsedCount = 1

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return(discountedLine(), nil)
	store.On("CouponForUpdate", mock.Anything, "SAVE10").Return(spent, nil)

	svc := NewService(store, verifier, nil)
	in := checkoutInput(72)
	in.PromoCode = "SAVE10"
	_, err := svc.Checkout(context.Background(), in)

	assert.ErrorIs(t, err, ErrCouponUsageExceeded)
	store.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "IncrementCouponUsage", mock.Anything, mock.Anything)
}

func TestCheckoutTotalMismatch(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return(discountedLine(), nil)

	svc := NewService(store, verifier, nil)
	_, err := svc.Checkout(context.Background(), checkoutInput(10)) // server computes 80

	assert.ErrorIs(t, err, ErrTotalMismatch)
	store.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpsertEnrollment", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
}

func TestCheckoutEmptyCart(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return([]models.CartLine{}, nil)

	svc := NewService(store, verifier, nil)
	_, err := svc.Checkout(context.Background(), checkoutInput(0))

	assert.ErrorIs(t, err, ErrEmptyCart)
	store.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
}

func TestCheckoutPaymentNotConfirmed(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	pending := succeededIntent("pi_100")
	pending.Status = "requires_payment_method"
	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(pending, nil)

	svc := NewService(store, verifier, nil)
	_, err := svc.Checkout(context.Background(), checkoutInput(80))

	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
	store.AssertNotCalled(t, "CartLines", mock.Anything, mock.Anything)
}

func TestCheckoutOrderNumberCollisionRetries(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return(discountedLine(), nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).
		Return(repository.ErrDuplicateOrderNumber).Once()
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(nil).Once().
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = 3 })
	expectHappyTail(store, 80)

	svc := NewService(store, verifier, nil)
	res, err := svc.Checkout(context.Background(), checkoutInput(80))

	assert.NoError(t, err)
	assert.NotNil(t, res.Order)
	store.AssertNumberOfCalls(t, "InsertOrder", 2)
}

func webhookEvent(paymentID string, amountCents int64) *payments.Event {
	ev := &payments.Event{ID: "evt_1", Type: payments.EventIntentSucceeded}
	ev.Data.Object = payments.Intent{
		ID:     paymentID,
		Status: payments.StatusSucceeded,
		Amount: amountCents,
		Metadata: map[string]string{
			"userId":    "7",
			"courseIds": "11",
		},
	}
	return ev
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	store := new(mocks.MockStore)
	svc := NewService(store, new(mocks.MockVerifier), nil)

	ev := &payments.Event{ID: "evt_1", Type: "payment_intent.created"}
	outcome, res, err := svc.HandlePaymentEvent(context.Background(), ev)

	assert.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Nil(t, res)
	store.AssertNotCalled(t, "OrderExistsByPaymentID", mock.Anything, mock.Anything)
}

func TestWebhookCompletesPurchase(t *testing.T) {
	store := new(mocks.MockStore)
	publisher := new(mocks.MockPublisher)

	store.On("OrderExistsByPaymentID", mock.Anything, "pi_101").Return(false, nil)
	store.On("CourseLines", mock.Anything, []int64{11}).Return(discountedLine(), nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = 4 })
	expectHappyTail(store, 80)
	publisher.On("Publish", mock.Anything, "order.completed", mock.Anything).Return(nil)

	svc := NewService(store, new(mocks.MockVerifier), publisher)
	outcome, res, err := svc.HandlePaymentEvent(context.Background(), webhookEvent("pi_101", 8000))

	assert.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)
	assert.Equal(t, 80.0, res.Order.Total)
	assert.Equal(t, "pi_101", res.Order.PaymentID)
	publisher.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("OrderExistsByPaymentID", mock.Anything, "pi_101").Return(true, nil)

	svc := NewService(store, new(mocks.MockVerifier), nil)
	outcome, res, err := svc.HandlePaymentEvent(context.Background(), webhookEvent("pi_101", 8000))

	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome)
	assert.Nil(t, res)
	store.AssertNotCalled(t, "CourseLines", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
}

func TestWebhookLosesRaceToSyncCheckout(t *testing.T) {
	// The pre-check passed but a concurrent checkout committed first;
	// the unique payment_id key fires at insert time.
	store := new(mocks.MockStore)
	store.On("OrderExistsByPaymentID", mock.Anything, "pi_101").Return(false, nil)
	store.On("CourseLines", mock.Anything, []int64{11}).Return(discountedLine(), nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(repository.ErrDuplicatePayment)

	svc := NewService(store, new(mocks.MockVerifier), nil)
	outcome, _, err := svc.HandlePaymentEvent(context.Background(), webhookEvent("pi_101", 8000))

	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome)
	store.AssertNotCalled(t, "InsertOrderFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookRecordsFailure(t *testing.T) {
	store := new(mocks.MockStore)
	dbDown := errors.New("connection refused")
	store.On("OrderExistsByPaymentID", mock.Anything, "pi_101").Return(false, nil)
	store.On("CourseLines", mock.Anything, []int64{11}).Return(nil, dbDown)
	store.On("InsertOrderFailure", mock.Anything, testUserID, "pi_101", dbDown.Error()).Return(nil)

	svc := NewService(store, new(mocks.MockVerifier), nil)
	_, _, err := svc.HandlePaymentEvent(context.Background(), webhookEvent("pi_101", 8000))

	assert.ErrorIs(t, err, dbDown)
	store.AssertExpectations(t)
}

func TestWebhookMalformedMetadata(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("OrderExistsByPaymentID", mock.Anything, "pi_101").Return(false, nil)

	ev := webhookEvent("pi_101", 8000)
	ev.Data.Object.Metadata = map[string]string{"courseIds": "11"} // no userId

	svc := NewService(store, new(mocks.MockVerifier), nil)
	_, _, err := svc.HandlePaymentEvent(context.Background(), ev)

	assert.Error(t, err)
	store.AssertNotCalled(t, "CourseLines", mock.Anything, mock.Anything)
}

func TestReplayedEnrollmentKeepsCountersFlat(t *testing.T) {
	// User already owns the course: enrollment upsert is a no-op and no
	// counter may move.
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return(discountedLine(), nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = 5 })
	store.On("InsertOrderItems", mock.Anything, mock.Anything).Return(nil)
	store.On("UpsertEnrollment", mock.Anything, testUserID, int64(11)).Return(false, nil)
	store.On("AddStudentTotals", mock.Anything, testUserID, 0, 80.0).Return(nil)
	store.On("ClearCart", mock.Anything, testUserID).Return(nil)

	svc := NewService(store, verifier, nil)
	res, err := svc.Checkout(context.Background(), checkoutInput(80))

	assert.NoError(t, err)
	assert.Equal(t, 0, res.NewEnrollments)
	store.AssertNotCalled(t, "IncrementCourseStudents", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestPublishFailureDoesNotFailCheckout(t *testing.T) {
	store := new(mocks.MockStore)
	verifier := new(mocks.MockVerifier)
	publisher := new(mocks.MockPublisher)

	verifier.On("VerifyIntent", mock.Anything, "pi_100").Return(succeededIntent("pi_100"), nil)
	store.On("CartLines", mock.Anything, testUserID).Return(discountedLine(), nil)
	store.On("InsertOrder", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = 6 })
	expectHappyTail(store, 80)
	publisher.On("Publish", mock.Anything, "order.completed", mock.Anything).
		Return(errors.New("broker unavailable"))

	svc := NewService(store, verifier, publisher)
	res, err := svc.Checkout(context.Background(), checkoutInput(80))

	assert.NoError(t, err)
	assert.NotNil(t, res)
	publisher.AssertExpectations(t)
}
