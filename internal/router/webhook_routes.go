package router

import (
    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/handler"
)

// RegisterWebhooks registers the provider webhook endpoint.  No JWT and no
// rate limiting: the caller is the payment provider, authenticated by the
// signature over the raw body, and throttling its deliveries would only
// delay reconciliation.
func RegisterWebhooks(e *echo.Echo, h *handler.WebhookHandler) {
    e.POST("/v1/webhooks/stripe", h.HandleStripe)
}
