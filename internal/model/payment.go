package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Payment status values.  The lifecycle is pending → succeeded or
// pending → failed; both end states are terminal.  Refunded exists in the
// schema for manual back-office updates but is never set by this service.
const (
    PaymentPending   = "pending"
    PaymentSucceeded = "succeeded"
    PaymentFailed    = "failed"
    PaymentRefunded  = "refunded"
)

// Payment represents one attempted purchase of a course.  Rows are created
// by the payment-intent initiator in pending state and mutated only by the
// webhook reconciler.  Rows are never deleted; a failed purchase keeps its
// row with the failure reason for support queries.
//
// TransactionID is the payment provider's intent identifier and is UNIQUE,
// which is what makes webhook delivery idempotent: reconciliation is keyed
// on it and re-applying a terminal state is a no-op.
type Payment struct {
    ID            uint64          // payments.id
    UserID        uint64          // payments.user_id
    CourseID      uint64          // payments.course_id
    Amount        decimal.Decimal // payments.amount, major units
    Currency      string          // payments.currency (e.g. "usd")
    PaymentStatus string          // payments.payment_status
    PaymentMethod string          // payments.payment_method (e.g. "stripe")
    TransactionID string          // payments.transaction_id, provider intent id
    FailureReason *string         // payments.failure_reason (nullable)
    PaidAt        *time.Time      // payments.paid_at (nullable)
    FailedAt      *time.Time      // payments.failed_at (nullable)
    CreatedAt     time.Time       // payments.created_at
    UpdatedAt     time.Time       // payments.updated_at
}
