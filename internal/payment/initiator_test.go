package payment

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/shopspring/decimal"

    "github.com/courseloom/course-marketplace/internal/repository"
)

type lookupsStub struct {
    users   map[uint64]bool
    courses map[uint64]bool
}

func (l lookupsStub) UserExists(_ context.Context, id uint64) (bool, error) {
    return l.users[id], nil
}

func (l lookupsStub) CourseExists(_ context.Context, id uint64) (bool, error) {
    return l.courses[id], nil
}

type providerStub struct {
    calls  int
    err    error
    intent Intent
}

func (p *providerStub) CreateIntent(context.Context, uint64, uint64, decimal.Decimal, string) (Intent, error) {
    p.calls++
    if p.err != nil {
        return Intent{}, p.err
    }
    return p.intent, nil
}

func newLookups() lookupsStub {
    return lookupsStub{users: map[uint64]bool{1: true}, courses: map[uint64]bool{10: true}}
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateIntentHappyPath(t *testing.T) {
    store := newPaymentStoreStub()
    prov := &providerStub{intent: Intent{TransactionID: "pi_1", ClientSecret: "cs_1"}}
    init := NewInitiator(store, newLookups(), prov, time.Second)

    secret, err := init.CreateIntent(context.Background(), 1, 10, price("29.99"), "usd")
    if err != nil {
        t.Fatalf("CreateIntent: %v", err)
    }
    if secret != "cs_1" {
        t.Fatalf("unexpected client secret: %q", secret)
    }
    if len(store.created) != 1 {
        t.Fatalf("expected one pending row, got %d", len(store.created))
    }
    p := store.created[0]
    if p.TransactionID != "pi_1" || p.UserID != 1 || p.CourseID != 10 {
        t.Fatalf("pending row mismatch: %+v", p)
    }
    if !p.Amount.Equal(price("29.99")) {
        t.Fatalf("amount mismatch: %s", p.Amount)
    }
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
    init := NewInitiator(newPaymentStoreStub(), newLookups(), &providerStub{}, time.Second)
    for _, amt := range []string{"0", "-1"} {
        if _, err := init.CreateIntent(context.Background(), 1, 10, price(amt), "usd"); !errors.Is(err, ErrInvalidAmount) {
            t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amt, err)
        }
    }
}

func TestCreateIntentUnknownUserAndCourse(t *testing.T) {
    init := NewInitiator(newPaymentStoreStub(), newLookups(), &providerStub{}, time.Second)

    if _, err := init.CreateIntent(context.Background(), 99, 10, price("10"), "usd"); !errors.Is(err, ErrUserMissing) {
        t.Fatalf("expected ErrUserMissing, got %v", err)
    }
    if _, err := init.CreateIntent(context.Background(), 1, 99, price("10"), "usd"); !errors.Is(err, ErrCourseMissing) {
        t.Fatalf("expected ErrCourseMissing, got %v", err)
    }
}

func TestCreateIntentConflictOnPending(t *testing.T) {
    store := newPaymentStoreStub()
    store.pending = true
    prov := &providerStub{}
    init := NewInitiator(store, newLookups(), prov, time.Second)

    _, err := init.CreateIntent(context.Background(), 1, 10, price("10"), "usd")
    if !errors.Is(err, repository.ErrPaymentInProgress) {
        t.Fatalf("expected ErrPaymentInProgress, got %v", err)
    }
    // The provider must never be contacted when a pending payment exists.
    if prov.calls != 0 {
        t.Fatalf("provider called %d times, want 0", prov.calls)
    }
}

func TestCreateIntentProviderFailureLeavesNoRow(t *testing.T) {
    store := newPaymentStoreStub()
    prov := &providerStub{err: errors.New("provider down")}
    init := NewInitiator(store, newLookups(), prov, time.Second)

    if _, err := init.CreateIntent(context.Background(), 1, 10, price("10"), "usd"); err == nil {
        t.Fatalf("expected provider error")
    }
    if len(store.created) != 0 {
        t.Fatalf("no pending row may exist after a provider failure")
    }
}
