package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/events"
	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/DiwanMalla/BrainiX-sub004/internal/payments"
	"github.com/DiwanMalla/BrainiX-sub004/internal/repository"
	"github.com/google/uuid"
)

// TotalEpsilon is the tolerance used when cross-checking the declared
// total against the server-computed one. Guards against client-side
// price tampering, not against honest float rounding.
const TotalEpsilon = 0.01

// Service implements the purchase workflow. The synchronous checkout
// endpoint and the webhook handler are both thin entry points into the
// same completePurchase operation, so the atomicity and idempotency
// rules live in exactly one place.
type Service struct {
	store     repository.Store
	verifier  payments.Verifier
	publisher events.Publisher
}

func NewService(store repository.Store, verifier payments.Verifier, publisher events.Publisher) *Service {
	return &Service{store: store, verifier: verifier, publisher: publisher}
}

// CheckoutInput is the synchronous checkout request after binding.
type CheckoutInput struct {
	UserID          int64
	PaymentIntentID string
	PromoCode       string
	BillingAddress  json.RawMessage
	ClientTotal     float64
}

// Result describes a completed purchase.
type Result struct {
	Order          *models.Order
	Items          []models.OrderItem
	NewEnrollments int
}

// purchase is the normalized snapshot completePurchase works from.
// CourseIDs nil means "read the user's live cart"; the webhook path
// supplies explicit ids because the cart may already be cleared.
type purchase struct {
	UserID         int64
	PaymentID      string
	PaymentMethod  string
	Currency       string
	DeclaredTotal  float64
	PromoCode      string
	BillingAddress json.RawMessage
	CourseIDs      []int64
}

// Checkout is the synchronous path: the client hands us a payment
// intent it already paid, we confirm that with the processor and then
// derive the order from the live cart.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*Result, error) {
	intent, err := s.verifier.VerifyIntent(ctx, in.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("payment verification: %w", err)
	}
	if intent.Status != payments.StatusSucceeded {
		return nil, ErrPaymentNotConfirmed
	}

	return s.completePurchase(ctx, purchase{
		UserID:         in.UserID,
		PaymentID:      intent.ID,
		PaymentMethod:  paymentMethodOf(intent),
		Currency:       currencyOf(intent),
		DeclaredTotal:  in.ClientTotal,
		PromoCode:      in.PromoCode,
		BillingAddress: in.BillingAddress,
	})
}

// Webhook outcomes.
type Outcome string

const (
	OutcomeCompleted        Outcome = "COMPLETED"
	OutcomeAlreadyProcessed Outcome = "ALREADY_PROCESSED"
	OutcomeIgnored          Outcome = "IGNORED"
)

// HandlePaymentEvent is the asynchronous path. The event has already
// passed signature verification; here we enforce idempotency and then
// re-derive the purchase from the intent metadata. At-least-once
// delivery means every step must be safe to repeat.
func (s *Service) HandlePaymentEvent(ctx context.Context, ev *payments.Event) (Outcome, *Result, error) {
	if ev.Type != payments.EventIntentSucceeded {
		return OutcomeIgnored, nil, nil
	}
	intent := ev.Data.Object

	exists, err := s.store.OrderExistsByPaymentID(ctx, intent.ID)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return OutcomeAlreadyProcessed, nil, nil
	}

	snapshot, err := purchaseFromIntent(&intent)
	if err != nil {
		return "", nil, err
	}

	result, err := s.completePurchase(ctx, *snapshot)
	if errors.Is(err, ErrPaymentProcessed) {
		// A racing synchronous checkout committed first; the unique
		// payment_id key is the tie-breaker.
		return OutcomeAlreadyProcessed, nil, nil
	}
	if err != nil {
		s.recordFailure(ctx, snapshot.UserID, intent.ID, err)
		return "", nil, err
	}
	return OutcomeCompleted, result, nil
}

func purchaseFromIntent(intent *payments.Intent) (*purchase, error) {
	userID, err := strconv.ParseInt(intent.Metadata["userId"], 10, 64)
	if err != nil {
		return nil, errors.New("event metadata missing or malformed userId")
	}
	courseIDs, err := payments.MetadataCourseIDs(intent.Metadata)
	if err != nil {
		return nil, err
	}

	var billing json.RawMessage
	if raw := intent.Metadata["billingAddress"]; raw != "" && json.Valid([]byte(raw)) {
		billing = json.RawMessage(raw)
	}

	return &purchase{
		UserID:         userID,
		PaymentID:      intent.ID,
		PaymentMethod:  paymentMethodOf(intent),
		Currency:       currencyOf(intent),
		DeclaredTotal:  float64(intent.Amount) / 100,
		PromoCode:      intent.Metadata["couponCode"],
		BillingAddress: billing,
		CourseIDs:      courseIDs,
	}, nil
}

// completePurchase runs the whole order workflow inside a single
// transaction: price the lines, evaluate the coupon, cross-check the
// total, persist the order with its items, grant enrollments, bump
// counters, clear the cart.
func (s *Service) completePurchase(ctx context.Context, p purchase) (*Result, error) {
	var result *Result

	err := s.store.Transact(ctx, func(tx repository.Store) error {
		var lines []models.CartLine
		var err error
		if p.CourseIDs == nil {
			lines, err = tx.CartLines(ctx, p.UserID)
		} else {
			lines, err = tx.CourseLines(ctx, p.CourseIDs)
		}
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		var subtotal float64
		for i := range lines {
			subtotal += lines[i].EffectivePrice()
		}

		var discount float64
		var couponID *int64
		if p.PromoCode != "" {
			coupon, err := tx.CouponForUpdate(ctx, NormalizeCode(p.PromoCode))
			if err != nil {
				return err
			}
			discount, err = EvaluateCoupon(coupon, subtotal, time.Now())
			if err != nil {
				return err
			}
			couponID = &coupon.ID
		}

		total := subtotal - discount
		if math.Abs(total-p.DeclaredTotal) > TotalEpsilon {
			return ErrTotalMismatch
		}

		order := &models.Order{
			OrderNumber:    NewOrderNumber(),
			UserID:         p.UserID,
			Status:         models.OrderCompleted,
			Total:          total,
			Discount:       discount,
			Currency:       p.Currency,
			PaymentMethod:  p.PaymentMethod,
			PaymentID:      p.PaymentID,
			CouponID:       couponID,
			BillingAddress: p.BillingAddress,
			CreatedAt:      time.Now(),
		}

		if err := s.insertOrder(ctx, tx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(lines))
		for i := range lines {
			items = append(items, models.OrderItem{
				OrderID:  order.ID,
				CourseID: lines[i].CourseID,
				Price:    lines[i].EffectivePrice(),
			})
		}
		if err := tx.InsertOrderItems(ctx, items); err != nil {
			return err
		}

		// Enrollment upsert per course. The counter increment is
		// conditioned on the row actually being created, so a replayed
		// event cannot inflate total_students.
		newEnrollments := 0
		for i := range lines {
			created, err := tx.UpsertEnrollment(ctx, p.UserID, lines[i].CourseID)
			if err != nil {
				return err
			}
			if created {
				newEnrollments++
				if err := tx.IncrementCourseStudents(ctx, lines[i].CourseID); err != nil {
					return err
				}
			}
		}

		// Coupon usage counts once per committed order; a duplicate
		// payment aborts above, before this line.
		if couponID != nil {
			if err := tx.IncrementCouponUsage(ctx, *couponID); err != nil {
				return err
			}
		}

		if err := tx.AddStudentTotals(ctx, p.UserID, newEnrollments, total); err != nil {
			return err
		}
		if err := tx.ClearCart(ctx, p.UserID); err != nil {
			return err
		}

		result = &Result{Order: order, Items: items, NewEnrollments: newEnrollments}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, result)
	return result, nil
}

// insertOrder retries exactly once on an order-number collision; the
// timestamp+random scheme makes a second collision vanishingly
// unlikely. A payment_id collision means double processing and is
// surfaced as ErrPaymentProcessed.
func (s *Service) insertOrder(ctx context.Context, tx repository.Store, order *models.Order) error {
	err := tx.InsertOrder(ctx, order)
	if errors.Is(err, repository.ErrDuplicateOrderNumber) {
		order.OrderNumber = NewOrderNumber()
		err = tx.InsertOrder(ctx, order)
	}
	if errors.Is(err, repository.ErrDuplicatePayment) {
		return ErrPaymentProcessed
	}
	return err
}

func (s *Service) publishCompleted(ctx context.Context, r *Result) {
	if s.publisher == nil {
		return
	}
	courseIDs := make([]int64, 0, len(r.Items))
	for i := range r.Items {
		courseIDs = append(courseIDs, r.Items[i].CourseID)
	}
	err := s.publisher.Publish(ctx, events.OrderCompleted, map[string]interface{}{
		"orderId":     r.Order.ID,
		"orderNumber": r.Order.OrderNumber,
		"userId":      r.Order.UserID,
		"total":       r.Order.Total,
		"courseIds":   courseIDs,
	})
	if err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v",
			events.OrderCompleted, r.Order.OrderNumber, err)
	}
}

// recordFailure writes the audit row for a webhook that verified but
// could not be persisted. Best effort: a failure here is logged, never
// surfaced, so it cannot mask the original error.
func (s *Service) recordFailure(ctx context.Context, userID int64, paymentID string, cause error) {
	if err := s.store.InsertOrderFailure(ctx, userID, paymentID, cause.Error()); err != nil {
		log.Printf("Warning: failed to record order failure for payment %s: %v", paymentID, err)
	}
}

// The processor omits these fields on some intent shapes; fall back to
// the values our frontend always uses.
func paymentMethodOf(intent *payments.Intent) string {
	if intent.PaymentMethod != "" {
		return intent.PaymentMethod
	}
	return "card"
}

func currencyOf(intent *payments.Intent) string {
	if intent.Currency != "" {
		return intent.Currency
	}
	return "usd"
}

// NewOrderNumber generates a human-readable, best-effort-unique order
// number. The unique constraint on orders.order_number is the real
// guarantee; callers retry once if it fires.
func NewOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("BX-%d-%s", time.Now().UnixMilli(), suffix)
}
