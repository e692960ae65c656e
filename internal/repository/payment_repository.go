package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/courseloom/course-marketplace/internal/model"
)

// PaymentRepo provides data access to the payments table.  Payment rows are
// created in pending state by the intent initiator and transitioned by the
// webhook reconciler.  Rows are never deleted.  The UNIQUE index on
// transaction_id makes the provider's intent id the idempotency key for
// everything the reconciler does.
type PaymentRepo struct {
    db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// HasPending reports whether a pending payment already exists for the
// (user, course) pair.  The initiator rejects a second intent while one is
// in flight so a user cannot end up with two provider intents for the same
// course.
func (r *PaymentRepo) HasPending(ctx context.Context, userID, courseID uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM payments WHERE user_id = ? AND course_id = ? AND payment_status = ? LIMIT 1`,
        userID, courseID, model.PaymentPending).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// CreatePending inserts a new pending payment carrying the provider's
// transaction id.  Called only after the provider-side intent succeeded, so
// a provider failure can never leave an orphan local row.  A duplicate
// transaction id (provider retransmission of the same intent id) returns
// ErrPaymentInProgress.
func (r *PaymentRepo) CreatePending(ctx context.Context, p *model.Payment) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO payments (user_id, course_id, amount, currency, payment_status, payment_method, transaction_id)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
        p.UserID, p.CourseID, p.Amount, p.Currency, model.PaymentPending, p.PaymentMethod, p.TransactionID)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrPaymentInProgress
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    p.PaymentStatus = model.PaymentPending
    return nil
}

// GetByTransactionID looks a payment up by the provider intent id.  Returns
// ErrNotFound for unknown ids; the reconciler tolerates those because the
// provider may deliver events for intents this deployment never created.
func (r *PaymentRepo) GetByTransactionID(ctx context.Context, txnID string) (*model.Payment, error) {
    const q = `SELECT id, user_id, course_id, amount, currency, payment_status, payment_method,
                      transaction_id, failure_reason, paid_at, failed_at, created_at, updated_at
               FROM payments WHERE transaction_id = ? LIMIT 1`
    var (
        p      model.Payment
        reason sql.NullString
        paidAt sql.NullTime
        failAt sql.NullTime
    )
    err := r.db.QueryRowContext(ctx, q, txnID).Scan(
        &p.ID, &p.UserID, &p.CourseID, &p.Amount, &p.Currency, &p.PaymentStatus, &p.PaymentMethod,
        &p.TransactionID, &reason, &paidAt, &failAt, &p.CreatedAt, &p.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if reason.Valid {
        s := reason.String
        p.FailureReason = &s
    }
    if paidAt.Valid {
        t := paidAt.Time
        p.PaidAt = &t
    }
    if failAt.Valid {
        t := failAt.Time
        p.FailedAt = &t
    }
    return &p, nil
}

// MarkSucceeded transitions a payment to succeeded, recording paid_at and
// the amount the provider actually settled (already normalized to major
// units by the caller).  The WHERE clause confines the transition to
// pending or already-succeeded rows: re-applying succeeded is a safe no-op
// on webhook redelivery, while a failed row is terminal and is never
// resurrected by a late success event.
func (r *PaymentRepo) MarkSucceeded(ctx context.Context, txnID string, amount decimal.Decimal) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE payments
         SET payment_status = ?, amount = ?, paid_at = COALESCE(paid_at, UTC_TIMESTAMP())
         WHERE transaction_id = ? AND payment_status IN (?, ?)`,
        model.PaymentSucceeded, amount, txnID, model.PaymentPending, model.PaymentSucceeded)
    return err
}

// MarkFailed transitions a payment to failed with the provider's reason.
// Only pending or already-failed rows match; a succeeded payment is never
// downgraded by a stale failure event.
func (r *PaymentRepo) MarkFailed(ctx context.Context, txnID, reason string) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE payments
         SET payment_status = ?, failure_reason = ?, failed_at = COALESCE(failed_at, UTC_TIMESTAMP())
         WHERE transaction_id = ? AND payment_status IN (?, ?)`,
        model.PaymentFailed, reason, txnID, model.PaymentPending, model.PaymentFailed)
    return err
}

// CourseRevenueRow is one line of a creator's revenue report.
type CourseRevenueRow struct {
    CourseID        uint64          `json:"course_id"`
    Title           string          `json:"title"`
    EnrollmentCount uint32          `json:"enrollment_count"`
    Revenue         decimal.Decimal `json:"revenue"`
}

// RevenueByCreator sums succeeded payment amounts per course for a creator,
// feeding the analytics endpoint.  Courses with no sales are included with
// zero revenue.
func (r *PaymentRepo) RevenueByCreator(ctx context.Context, creatorID uint64) ([]CourseRevenueRow, error) {
    const q = `SELECT c.id, c.title, c.enrollment_count, COALESCE(SUM(p.amount), 0)
               FROM courses c
               LEFT JOIN payments p ON p.course_id = c.id AND p.payment_status = 'succeeded'
               WHERE c.creator_id = ?
               GROUP BY c.id, c.title, c.enrollment_count
               ORDER BY c.id`
    rows, err := r.db.QueryContext(ctx, q, creatorID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]CourseRevenueRow, 0)
    for rows.Next() {
        var it CourseRevenueRow
        if err := rows.Scan(&it.CourseID, &it.Title, &it.EnrollmentCount, &it.Revenue); err != nil {
            return nil, err
        }
        items = append(items, it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}
