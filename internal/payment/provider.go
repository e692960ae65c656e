package payment

import (
    "context"
    "strconv"

    "github.com/shopspring/decimal"
    "github.com/stripe/stripe-go/v76"
    "github.com/stripe/stripe-go/v76/paymentintent"
)

// Intent is the provider-side payment intent reduced to the two values the
// rest of the system is allowed to see.  Raw provider objects and API keys
// never leave this package.
type Intent struct {
    TransactionID string // provider intent id, the idempotency key everywhere
    ClientSecret  string // opaque secret the browser uses to complete payment
}

// Provider creates payment intents with the external processor.  The
// production implementation is StripeProvider; tests substitute a stub.
type Provider interface {
    CreateIntent(ctx context.Context, userID, courseID uint64, amount decimal.Decimal, currency string) (Intent, error)
}

// StripeProvider creates intents through the Stripe API.  The global
// stripe.Key is set once in main from config; this type only shapes
// requests and responses.
type StripeProvider struct{}

// CreateIntent converts the major-unit amount to the provider's minor
// units and creates the intent.  The caller's userID/courseID travel as
// intent metadata so provider-side dashboards can be cross-referenced with
// local rows.  The context carries the bounded provider timeout; on
// expiry the whole request fails and no local payment row gets written.
func (StripeProvider) CreateIntent(ctx context.Context, userID, courseID uint64, amount decimal.Decimal, currency string) (Intent, error) {
    minor := amount.Mul(decimal.NewFromInt(100)).IntPart()
    params := &stripe.PaymentIntentParams{
        Amount:   stripe.Int64(minor),
        Currency: stripe.String(currency),
    }
    params.Context = ctx
    params.AddMetadata("user_id", strconv.FormatUint(userID, 10))
    params.AddMetadata("course_id", strconv.FormatUint(courseID, 10))
    pi, err := paymentintent.New(params)
    if err != nil {
        return Intent{}, err
    }
    return Intent{TransactionID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// MajorUnits converts a provider minor-unit amount (e.g. 2999 cents) to
// major units (29.99).  Shared by the reconciler and its tests.
func MajorUnits(minor int64) decimal.Decimal {
    return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
