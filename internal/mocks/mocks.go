package mocks

import (
	"context"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/DiwanMalla/BrainiX-sub004/internal/payments"
	"github.com/DiwanMalla/BrainiX-sub004/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of repository.Store.
type MockStore struct {
	mock.Mock
}

// Transact runs the closure against the mock itself; transaction
// boundaries are not interesting to unit tests.
func (m *MockStore) Transact(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

func (m *MockStore) CartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartLine), args.Error(1)
}

func (m *MockStore) CourseLines(ctx context.Context, courseIDs []int64) ([]models.CartLine, error) {
	args := m.Called(ctx, courseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartLine), args.Error(1)
}

func (m *MockStore) ClearCart(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStore) CouponForUpdate(ctx context.Context, code string) (*models.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func (m *MockStore) IncrementCouponUsage(ctx context.Context, couponID int64) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

func (m *MockStore) OrderExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) InsertOrder(ctx context.Context, o *models.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockStore) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockStore) InsertOrderFailure(ctx context.Context, userID int64, paymentID, reason string) error {
	args := m.Called(ctx, userID, paymentID, reason)
	return args.Error(0)
}

func (m *MockStore) UpsertEnrollment(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) IncrementCourseStudents(ctx context.Context, courseID int64) error {
	args := m.Called(ctx, courseID)
	return args.Error(0)
}

func (m *MockStore) AddStudentTotals(ctx context.Context, userID int64, courses int, spent float64) error {
	args := m.Called(ctx, userID, courses, spent)
	return args.Error(0)
}

// MockVerifier is a testify mock of payments.Verifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyIntent(ctx context.Context, intentID string) (*payments.Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Intent), args.Error(1)
}

// MockPublisher is a testify mock of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data interface{}) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}
