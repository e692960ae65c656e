// Package payment holds the two halves of the purchase workflow: the
// Initiator that opens a provider-side payment intent, and the Reconciler
// that absorbs the provider's asynchronous webhook events and turns a
// settled payment into an enrollment.
package payment

import (
    "context"
    "errors"
    "time"

    "github.com/shopspring/decimal"

    "github.com/courseloom/course-marketplace/internal/model"
    "github.com/courseloom/course-marketplace/internal/repository"
)

// Validation errors returned by the Initiator.  Handlers translate these
// to 400/404; anything else is a provider or storage fault and maps to 500.
var (
    ErrInvalidAmount = errors.New("amount must be positive")
    ErrUserMissing   = errors.New("user not found")
    ErrCourseMissing = errors.New("course not found")
)

// PaymentStore is the slice of the payment repository the Initiator and
// Reconciler need.  *repository.PaymentRepo satisfies it; tests use fakes.
type PaymentStore interface {
    HasPending(ctx context.Context, userID, courseID uint64) (bool, error)
    CreatePending(ctx context.Context, p *model.Payment) error
    GetByTransactionID(ctx context.Context, txnID string) (*model.Payment, error)
    MarkSucceeded(ctx context.Context, txnID string, amount decimal.Decimal) error
    MarkFailed(ctx context.Context, txnID, reason string) error
}

// Lookups is the existence-check surface the Initiator borrows from the
// user and course repositories.
type Lookups interface {
    UserExists(ctx context.Context, userID uint64) (bool, error)
    CourseExists(ctx context.Context, courseID uint64) (bool, error)
}

// Initiator creates provider payment intents and the matching local
// pending rows.
type Initiator struct {
    store    PaymentStore
    lookups  Lookups
    provider Provider
    timeout  time.Duration
}

// NewInitiator constructs an Initiator.  timeout bounds the provider call;
// zero falls back to 5 seconds.
func NewInitiator(store PaymentStore, lookups Lookups, provider Provider, timeout time.Duration) *Initiator {
    if store == nil || lookups == nil || provider == nil {
        panic("nil dependency passed to payment.NewInitiator")
    }
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &Initiator{store: store, lookups: lookups, provider: provider, timeout: timeout}
}

// CreateIntent opens a payment intent for the given purchase and returns
// the client secret.  Order of operations is deliberate:
//
//  1. local validation (user, course, amount, no pending payment): reject
//     before anything is created anywhere;
//  2. provider call under a bounded timeout: on failure nothing local
//     exists, so there is no orphan row to clean up;
//  3. local pending row keyed by the provider transaction id.
//
// If step 3 fails after step 2 succeeded the provider intent is simply
// never reconciled; the provider expires unconfirmed intents on its own.
func (i *Initiator) CreateIntent(ctx context.Context, userID, courseID uint64, amount decimal.Decimal, currency string) (string, error) {
    if amount.Sign() <= 0 {
        return "", ErrInvalidAmount
    }
    ok, err := i.lookups.UserExists(ctx, userID)
    if err != nil {
        return "", err
    }
    if !ok {
        return "", ErrUserMissing
    }
    ok, err = i.lookups.CourseExists(ctx, courseID)
    if err != nil {
        return "", err
    }
    if !ok {
        return "", ErrCourseMissing
    }

    pending, err := i.store.HasPending(ctx, userID, courseID)
    if err != nil {
        return "", err
    }
    if pending {
        return "", repository.ErrPaymentInProgress
    }

    pctx, cancel := context.WithTimeout(ctx, i.timeout)
    defer cancel()
    intent, err := i.provider.CreateIntent(pctx, userID, courseID, amount, currency)
    if err != nil {
        return "", err
    }

    p := &model.Payment{
        UserID:        userID,
        CourseID:      courseID,
        Amount:        amount,
        Currency:      currency,
        PaymentMethod: "stripe",
        TransactionID: intent.TransactionID,
    }
    if err := i.store.CreatePending(ctx, p); err != nil {
        return "", err
    }
    return intent.ClientSecret, nil
}
