package payment

import (
    "context"
    "testing"

    "github.com/shopspring/decimal"

    "github.com/courseloom/course-marketplace/internal/enroll"
    "github.com/courseloom/course-marketplace/internal/model"
    "github.com/courseloom/course-marketplace/internal/repository"
)

type paymentStoreStub struct {
    payments map[string]*model.Payment

    succeededWith map[string]decimal.Decimal
    failedWith    map[string]string
    pending       bool
    created       []*model.Payment
}

func newPaymentStoreStub() *paymentStoreStub {
    return &paymentStoreStub{
        payments:      map[string]*model.Payment{},
        succeededWith: map[string]decimal.Decimal{},
        failedWith:    map[string]string{},
    }
}

func (s *paymentStoreStub) HasPending(context.Context, uint64, uint64) (bool, error) {
    return s.pending, nil
}

func (s *paymentStoreStub) CreatePending(_ context.Context, p *model.Payment) error {
    s.created = append(s.created, p)
    s.payments[p.TransactionID] = p
    return nil
}

func (s *paymentStoreStub) GetByTransactionID(_ context.Context, txnID string) (*model.Payment, error) {
    p, ok := s.payments[txnID]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return p, nil
}

// MarkSucceeded and MarkFailed mirror the conditional UPDATEs of the real
// store: only pending rows and re-applications of the same terminal state
// take effect, anything else is a silent no-op.
func (s *paymentStoreStub) MarkSucceeded(_ context.Context, txnID string, amount decimal.Decimal) error {
    p, ok := s.payments[txnID]
    if !ok {
        return nil
    }
    if p.PaymentStatus != model.PaymentPending && p.PaymentStatus != model.PaymentSucceeded {
        return nil
    }
    p.PaymentStatus = model.PaymentSucceeded
    s.succeededWith[txnID] = amount
    return nil
}

func (s *paymentStoreStub) MarkFailed(_ context.Context, txnID, reason string) error {
    p, ok := s.payments[txnID]
    if !ok {
        return nil
    }
    if p.PaymentStatus != model.PaymentPending && p.PaymentStatus != model.PaymentFailed {
        return nil
    }
    p.PaymentStatus = model.PaymentFailed
    s.failedWith[txnID] = reason
    return nil
}

type enrollerStub struct {
    result enroll.Result
    calls  [][2]uint64
}

func (e *enrollerStub) Enroll(_ context.Context, userID, courseID uint64) enroll.Result {
    e.calls = append(e.calls, [2]uint64{userID, courseID})
    return e.result
}

type failureEventsStub struct {
    reasons []string
}

func (f *failureEventsStub) EnrollmentFailed(_ context.Context, _, _ uint64, reason string) {
    f.reasons = append(f.reasons, reason)
}

func TestHandleSucceededEnrollsAndNormalizesAmount(t *testing.T) {
    store := newPaymentStoreStub()
    store.payments["pi_1"] = &model.Payment{UserID: 1, CourseID: 10, TransactionID: "pi_1", PaymentStatus: model.PaymentPending}
    enr := &enrollerStub{result: enroll.Result{Success: true, Message: enroll.MsgEnrolled, EnrolledCourseID: 10}}
    rec := NewReconciler(store, enr, nil)

    if err := rec.HandleSucceeded(context.Background(), "pi_1", 2999); err != nil {
        t.Fatalf("HandleSucceeded: %v", err)
    }
    want := decimal.RequireFromString("29.99")
    if got := store.succeededWith["pi_1"]; !got.Equal(want) {
        t.Fatalf("amount not normalized: got %s want %s", got, want)
    }
    if len(enr.calls) != 1 || enr.calls[0] != [2]uint64{1, 10} {
        t.Fatalf("unexpected enroll calls: %v", enr.calls)
    }
}

func TestHandleSucceededUnknownTransactionIgnored(t *testing.T) {
    store := newPaymentStoreStub()
    enr := &enrollerStub{}
    rec := NewReconciler(store, enr, nil)

    if err := rec.HandleSucceeded(context.Background(), "pi_unknown", 2999); err != nil {
        t.Fatalf("unknown transaction should not error: %v", err)
    }
    if len(enr.calls) != 0 {
        t.Fatalf("no enrollment should happen for unknown transaction")
    }
}

func TestHandleSucceededSwallowsEnrollmentFailure(t *testing.T) {
    store := newPaymentStoreStub()
    store.payments["pi_1"] = &model.Payment{UserID: 1, CourseID: 10, TransactionID: "pi_1", PaymentStatus: model.PaymentPending}
    enr := &enrollerStub{result: enroll.Result{Success: false, Message: enroll.MsgStorageFailure}}
    events := &failureEventsStub{}
    rec := NewReconciler(store, enr, events)

    if err := rec.HandleSucceeded(context.Background(), "pi_1", 2999); err != nil {
        t.Fatalf("enrollment failure must not fail the webhook: %v", err)
    }
    if len(events.reasons) != 1 || events.reasons[0] != enroll.MsgStorageFailure {
        t.Fatalf("expected one failure event, got %v", events.reasons)
    }
    // The payment itself is still marked succeeded.
    if _, ok := store.succeededWith["pi_1"]; !ok {
        t.Fatalf("payment should be marked succeeded despite enrollment failure")
    }
}

func TestHandleSucceededReplayIsQuiet(t *testing.T) {
    // A redelivered success event finds the user already enrolled; that is
    // the expected replay outcome, not a failure to report.
    store := newPaymentStoreStub()
    store.payments["pi_1"] = &model.Payment{UserID: 1, CourseID: 10, TransactionID: "pi_1", PaymentStatus: model.PaymentPending}
    enr := &enrollerStub{result: enroll.Result{Success: false, Message: enroll.MsgAlreadyEnrolled}}
    events := &failureEventsStub{}
    rec := NewReconciler(store, enr, events)

    if err := rec.HandleSucceeded(context.Background(), "pi_1", 2999); err != nil {
        t.Fatalf("replay should not error: %v", err)
    }
    if len(events.reasons) != 0 {
        t.Fatalf("already-enrolled must not publish a failure event, got %v", events.reasons)
    }
}

func TestHandleFailedRecordsReason(t *testing.T) {
    store := newPaymentStoreStub()
    store.payments["pi_1"] = &model.Payment{UserID: 1, CourseID: 10, TransactionID: "pi_1", PaymentStatus: model.PaymentPending}
    rec := NewReconciler(store, &enrollerStub{}, nil)

    if err := rec.HandleFailed(context.Background(), "pi_1", "card_declined"); err != nil {
        t.Fatalf("HandleFailed: %v", err)
    }
    if store.failedWith["pi_1"] != "card_declined" {
        t.Fatalf("reason not recorded: %q", store.failedWith["pi_1"])
    }
}

func TestHandleFailedDefaultsReason(t *testing.T) {
    store := newPaymentStoreStub()
    store.payments["pi_1"] = &model.Payment{UserID: 1, CourseID: 10, TransactionID: "pi_1", PaymentStatus: model.PaymentPending}
    rec := NewReconciler(store, &enrollerStub{}, nil)

    if err := rec.HandleFailed(context.Background(), "pi_1", ""); err != nil {
        t.Fatalf("HandleFailed: %v", err)
    }
    if store.failedWith["pi_1"] != "unknown payment failure" {
        t.Fatalf("empty reason should default, got %q", store.failedWith["pi_1"])
    }
}

func TestHandleFailedUnknownTransactionIgnored(t *testing.T) {
    store := newPaymentStoreStub()
    rec := NewReconciler(store, &enrollerStub{}, nil)
    if err := rec.HandleFailed(context.Background(), "pi_unknown", "x"); err != nil {
        t.Fatalf("unknown transaction should not error: %v", err)
    }
    if len(store.failedWith) != 0 {
        t.Fatalf("nothing should be marked failed")
    }
}

func TestHandleSucceededAfterFailureIsIgnored(t *testing.T) {
    // Failed is terminal.  A success event arriving after the failure is
    // stale; it must neither flip the status nor grant the enrollment.
    store := newPaymentStoreStub()
    store.payments["pi_1"] = &model.Payment{
        UserID: 1, CourseID: 10, TransactionID: "pi_1",
        PaymentStatus: model.PaymentFailed,
    }
    enr := &enrollerStub{result: enroll.Result{Success: true, Message: enroll.MsgEnrolled}}
    rec := NewReconciler(store, enr, nil)

    if err := rec.HandleSucceeded(context.Background(), "pi_1", 2999); err != nil {
        t.Fatalf("stale success event should not error: %v", err)
    }
    if got := store.payments["pi_1"].PaymentStatus; got != model.PaymentFailed {
        t.Fatalf("failed status overwritten: %q", got)
    }
    if len(store.succeededWith) != 0 {
        t.Fatalf("no success should be recorded: %v", store.succeededWith)
    }
    if len(enr.calls) != 0 {
        t.Fatalf("failed payment must not enroll: %v", enr.calls)
    }
}

func TestHandleFailedAfterSuccessKeepsSucceeded(t *testing.T) {
    store := newPaymentStoreStub()
    store.payments["pi_1"] = &model.Payment{
        UserID: 1, CourseID: 10, TransactionID: "pi_1",
        PaymentStatus: model.PaymentSucceeded,
    }
    rec := NewReconciler(store, &enrollerStub{}, nil)

    if err := rec.HandleFailed(context.Background(), "pi_1", "card_declined"); err != nil {
        t.Fatalf("stale failure event should not error: %v", err)
    }
    if got := store.payments["pi_1"].PaymentStatus; got != model.PaymentSucceeded {
        t.Fatalf("succeeded status downgraded: %q", got)
    }
    if len(store.failedWith) != 0 {
        t.Fatalf("no failure should be recorded: %v", store.failedWith)
    }
}

func TestMajorUnits(t *testing.T) {
    cases := map[int64]string{
        2999: "29.99",
        100:  "1",
        1:    "0.01",
        0:    "0",
    }
    for minor, want := range cases {
        if got := MajorUnits(minor); !got.Equal(decimal.RequireFromString(want)) {
            t.Fatalf("MajorUnits(%d) = %s, want %s", minor, got, want)
        }
    }
}
