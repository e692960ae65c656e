package payment

import (
    "context"
    "errors"
    "log"

    "github.com/courseloom/course-marketplace/internal/enroll"
    "github.com/courseloom/course-marketplace/internal/model"
    "github.com/courseloom/course-marketplace/internal/repository"
)

// Enroller is the enrollment entry point the reconciler calls once a
// payment settles.  *enroll.Service satisfies it.
type Enroller interface {
    Enroll(ctx context.Context, userID, courseID uint64) enroll.Result
}

// FailureEvents receives enrollment failures that the webhook path
// swallows.  Swallowing is policy (the provider must not retry-storm
// enrollment) but the failures still have to reach operational tooling,
// so they go out as queue events instead of HTTP errors.  Nil disables
// publication.
type FailureEvents interface {
    EnrollmentFailed(ctx context.Context, userID, courseID uint64, reason string)
}

// Reconciler applies provider webhook events to local payment state.  It
// holds no memory of processed events: idempotency comes from the
// conditional status updates in the store (terminal states re-apply as
// no-ops) and from the enrollment service's own membership guarantee.
type Reconciler struct {
    store    PaymentStore
    enroller Enroller
    events   FailureEvents
}

// NewReconciler constructs a Reconciler. events may be nil.
func NewReconciler(store PaymentStore, enroller Enroller, events FailureEvents) *Reconciler {
    if store == nil || enroller == nil {
        panic("nil dependency passed to payment.NewReconciler")
    }
    return &Reconciler{store: store, enroller: enroller, events: events}
}

// HandleSucceeded processes a "payment succeeded" event.  amountMinor is
// the provider's minor-unit settlement amount (2999 = 29.99).  Unknown
// transaction ids are logged and dropped without error: the provider may
// replay old events or deliver events for intents created by another
// deployment, and failing the delivery would only trigger retries for an
// event this system can never use.  An enrollment failure is logged and
// published but does not fail the call; payment reconciliation is not
// rolled back by enrollment issues.
func (r *Reconciler) HandleSucceeded(ctx context.Context, txnID string, amountMinor int64) error {
    p, err := r.store.GetByTransactionID(ctx, txnID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            log.Printf("reconciler: no payment for transaction %s, ignoring", txnID)
            return nil
        }
        return err
    }
    if p.PaymentStatus == model.PaymentFailed {
        // Failed is terminal.  The conditional UPDATE in the store would
        // refuse the transition anyway, but a stale success event must not
        // enroll a user whose payment is recorded as failed either.
        log.Printf("reconciler: success event for failed payment %s, ignoring", txnID)
        return nil
    }

    if err := r.store.MarkSucceeded(ctx, txnID, MajorUnits(amountMinor)); err != nil {
        return err
    }

    res := r.enroller.Enroll(ctx, p.UserID, p.CourseID)
    if !res.Success && res.Message != enroll.MsgAlreadyEnrolled {
        // Already-enrolled is the expected outcome of a replayed event,
        // anything else is a real failure someone needs to see.
        log.Printf("reconciler: enrollment failed after payment %s user=%d course=%d: %s",
            txnID, p.UserID, p.CourseID, res.Message)
        if r.events != nil {
            r.events.EnrollmentFailed(ctx, p.UserID, p.CourseID, res.Message)
        }
    }
    return nil
}

// HandleFailed processes a "payment failed" event.  No enrollment side
// effect; the row keeps the provider's reason for support queries.
// Unknown transaction ids are tolerated exactly as in HandleSucceeded.
func (r *Reconciler) HandleFailed(ctx context.Context, txnID, reason string) error {
    if reason == "" {
        reason = "unknown payment failure"
    }
    p, err := r.store.GetByTransactionID(ctx, txnID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            log.Printf("reconciler: no payment for failed transaction %s, ignoring", txnID)
            return nil
        }
        return err
    }
    if p.PaymentStatus == model.PaymentSucceeded {
        // A settled payment is never downgraded by a late failure event.
        log.Printf("reconciler: failure event for succeeded payment %s, ignoring", txnID)
        return nil
    }
    return r.store.MarkFailed(ctx, txnID, reason)
}
