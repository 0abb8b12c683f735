package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DiwanMalla/BrainiX-sub004/internal/models"
	"github.com/DiwanMalla/BrainiX-sub004/internal/repository"
	"github.com/go-sql-driver/mysql"
)

// queryer is satisfied by both *sql.DB and *sql.Tx, so every store
// method works inside or outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL implementation of repository.Store.
type Store struct {
	db *sql.DB
	q  queryer
}

// NewStore wraps the shared connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Transact runs fn against a store bound to a single transaction,
// committing on nil and rolling back on error or panic.
func (s *Store) Transact(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Safety net; no-op after Commit.

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

//
// --- Cart ---
//

func (s *Store) CartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	query := `
		SELECT ci.course_id, c.title, c.price, c.discount_price
		FROM cart_items ci
		JOIN courses c ON ci.course_id = c.id
		WHERE ci.user_id = ? AND c.published = TRUE
		ORDER BY ci.added_at`
	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLines(rows)
}

func (s *Store) CourseLines(ctx context.Context, courseIDs []int64) ([]models.CartLine, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(courseIDs)), ",")
	args := make([]any, len(courseIDs))
	for i, id := range courseIDs {
		args[i] = id
	}
	query := fmt.Sprintf(`
		SELECT id, title, price, discount_price
		FROM courses
		WHERE id IN (%s)`, placeholders)
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLines(rows)
}

func scanLines(rows *sql.Rows) ([]models.CartLine, error) {
	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		var discount sql.NullFloat64
		if err := rows.Scan(&line.CourseID, &line.Title, &line.Price, &discount); err != nil {
			return nil, err
		}
		if discount.Valid {
			line.DiscountPrice = &discount.Float64
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID)
	return err
}

//
// --- Coupons ---
//

func (s *Store) CouponForUpdate(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, start_date, end_date,
		       is_active, min_order_value, max_discount_amount, max_uses, used_count
		FROM coupons
		WHERE code = ?
		FOR UPDATE`

	var c models.Coupon
	var maxDiscount sql.NullFloat64
	var maxUses sql.NullInt64
	err := s.q.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.StartDate, &c.EndDate,
		&c.IsActive, &c.MinOrderValue, &maxDiscount, &maxUses, &c.UsedCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if maxDiscount.Valid {
		c.MaxDiscountAmount = &maxDiscount.Float64
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		c.MaxUses = &n
	}
	return &c, nil
}

func (s *Store) IncrementCouponUsage(ctx context.Context, couponID int64) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE coupons SET used_count = used_count + 1, updated_at = ? WHERE id = ?",
		time.Now(), couponID)
	return err
}

//
// --- Orders ---
//

func (s *Store) OrderExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, "SELECT id FROM orders WHERE payment_id = ?", paymentID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) InsertOrder(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders
			(order_number, user_id, status, total, discount, tax, currency,
			 payment_method, payment_id, coupon_id, billing_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var couponID any
	if o.CouponID != nil {
		couponID = *o.CouponID
	}
	var billing any
	if len(o.BillingAddress) > 0 {
		billing = []byte(o.BillingAddress)
	}

	res, err := s.q.ExecContext(ctx, query,
		o.OrderNumber, o.UserID, o.Status, o.Total, o.Discount, o.Tax, o.Currency,
		o.PaymentMethod, o.PaymentID, couponID, billing, o.CreatedAt)
	if err != nil {
		return translateDuplicate(err)
	}
	o.ID, err = res.LastInsertId()
	return err
}

// translateDuplicate maps MySQL duplicate-key errors (1062) onto the
// repository sentinels by inspecting the violated index name.
func translateDuplicate(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != 1062 {
		return err
	}
	switch {
	case strings.Contains(mysqlErr.Message, "payment_id"):
		return repository.ErrDuplicatePayment
	case strings.Contains(mysqlErr.Message, "order_number"):
		return repository.ErrDuplicateOrderNumber
	}
	return err
}

func (s *Store) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	query := "INSERT INTO order_items (order_id, course_id, price) VALUES (?, ?, ?)"
	for i := range items {
		res, err := s.q.ExecContext(ctx, query, items[i].OrderID, items[i].CourseID, items[i].Price)
		if err != nil {
			return err
		}
		items[i].ID, _ = res.LastInsertId()
	}
	return nil
}

func (s *Store) InsertOrderFailure(ctx context.Context, userID int64, paymentID, reason string) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO order_failures (user_id, payment_id, reason, created_at) VALUES (?, ?, ?, ?)",
		userID, paymentID, reason, time.Now())
	return err
}

//
// --- Enrollments & counters ---
//

// UpsertEnrollment creates the (user, course) enrollment if absent and
// leaves an existing row untouched. With "id = id" the no-op update
// reports zero affected rows, which is how we learn whether the row was
// actually created.
func (s *Store) UpsertEnrollment(ctx context.Context, userID, courseID int64) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO enrollments (user_id, course_id, status, enrolled_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id`,
		userID, courseID, models.EnrollmentActive, time.Now())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *Store) IncrementCourseStudents(ctx context.Context, courseID int64) error {
	_, err := s.q.ExecContext(ctx,
		"UPDATE courses SET total_students = total_students + 1 WHERE id = ?", courseID)
	return err
}

func (s *Store) AddStudentTotals(ctx context.Context, userID int64, courses int, spent float64) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE users
		SET total_courses = total_courses + ?, total_spent = total_spent + ?, updated_at = ?
		WHERE id = ?`,
		courses, spent, time.Now(), userID)
	return err
}
