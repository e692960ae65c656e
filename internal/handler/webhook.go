package handler

import (
    "encoding/json"
    "io"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/stripe/stripe-go/v76"
    "github.com/stripe/stripe-go/v76/webhook"

    "github.com/courseloom/course-marketplace/internal/payment"
)

// WebhookHandler terminates provider webhook deliveries.  Signature
// verification runs over the raw request bytes, so this handler reads the
// body itself instead of going through Bind.
type WebhookHandler struct {
    Reconciler *payment.Reconciler
    Secret     string // webhook signing secret shared with the provider

    // MaxBodyBytes caps how much of a delivery is read.  Provider events
    // are small; anything bigger is not a legitimate delivery.
    MaxBodyBytes int64
}

func NewWebhookHandler(r *payment.Reconciler, secret string) *WebhookHandler {
    if r == nil {
        panic("nil reconciler passed to NewWebhookHandler")
    }
    return &WebhookHandler{Reconciler: r, Secret: secret, MaxBodyBytes: 64 * 1024}
}

// HandleStripe processes POST /v1/webhooks/stripe.  Status codes drive the
// provider's retry machinery, so they are chosen deliberately:
//
//   - 400 for bad signatures and unreadable payloads: retrying cannot fix
//     a forgery, drop it;
//   - 500 for storage faults: the provider retries with backoff and the
//     conditional updates make the redelivery a safe replay;
//   - 200 for everything else, including event types this service does not
//     consume and enrollment failures the reconciler already routed to the
//     failure queue.
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
    body, err := io.ReadAll(io.LimitReader(c.Request().Body, h.MaxBodyBytes))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable payload"})
    }

    event, err := webhook.ConstructEvent(body, c.Request().Header.Get("Stripe-Signature"), h.Secret)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed"})
    }

    ctx := c.Request().Context()
    switch event.Type {
    case "payment_intent.succeeded":
        var pi stripe.PaymentIntent
        if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed event object"})
        }
        if err := h.Reconciler.HandleSucceeded(ctx, pi.ID, pi.Amount); err != nil {
            log.Printf("webhook: reconcile succeeded %s: %v", pi.ID, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
        }
    case "payment_intent.payment_failed":
        var pi stripe.PaymentIntent
        if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed event object"})
        }
        reason := ""
        if pi.LastPaymentError != nil {
            reason = pi.LastPaymentError.Msg
        }
        if err := h.Reconciler.HandleFailed(ctx, pi.ID, reason); err != nil {
            log.Printf("webhook: reconcile failed %s: %v", pi.ID, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
        }
    default:
        // Not subscribed to this type; acknowledge so the provider stops
        // sending it.
    }
    return c.JSON(http.StatusOK, echo.Map{"received": true})
}
