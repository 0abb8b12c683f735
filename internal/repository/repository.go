package repository

import (
	"context"
	"errors"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
)

// Duplicate-key errors surfaced by Store implementations. The checkout
// service decides what each one means (retry a colliding order number,
// treat a duplicate payment as already processed).
var (
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrDuplicatePayment     = errors.New("payment already recorded")
)

// Store is the persistence surface of the purchase workflow. Methods
// called inside the closure passed to Transact run on one database
// transaction; either all of their effects land or none do.
type Store interface {
	Transact(ctx context.Context, fn func(Store) error) error

	// Cart
	CartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	CourseLines(ctx context.Context, courseIDs []int64) ([]models.CartLine, error)
	ClearCart(ctx context.Context, userID int64) error

	// Coupons. CouponForUpdate locks the row so concurrent checkouts
	// serialize on the usage counter.
	CouponForUpdate(ctx context.Context, code string) (*models.Coupon, error)
	IncrementCouponUsage(ctx context.Context, couponID int64) error

	// Orders
	OrderExistsByPaymentID(ctx context.Context, paymentID string) (bool, error)
	InsertOrder(ctx context.Context, o *models.Order) error
	InsertOrderItems(ctx context.Context, items []models.OrderItem) error
	InsertOrderFailure(ctx context.Context, userID int64, paymentID, reason string) error

	// Enrollments and counters. UpsertEnrollment reports whether a new
	// row was actually created; counters are only bumped when it was.
	UpsertEnrollment(ctx context.Context, userID, courseID int64) (created bool, err error)
	IncrementCourseStudents(ctx context.Context, courseID int64) error
	AddStudentTotals(ctx context.Context, userID int64, courses int, spent float64) error
}
