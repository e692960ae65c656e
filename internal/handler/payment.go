package handler

import (
    "errors"   // sentinel comparisons against initiator errors
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/courseloom/course-marketplace/internal/payment"
    "github.com/courseloom/course-marketplace/internal/repository"
)

// PaymentHandler exposes the payment intent endpoint.  The heavy lifting
// lives in payment.Initiator; this layer only maps JSON and errors.
type PaymentHandler struct {
    Initiator *payment.Initiator
}

func NewPaymentHandler(i *payment.Initiator) *PaymentHandler {
    if i == nil {
        panic("nil initiator passed to NewPaymentHandler")
    }
    return &PaymentHandler{Initiator: i}
}

type createIntentReq struct {
    CourseID uint64          `json:"course_id"`
    Amount   decimal.Decimal `json:"amount"`
    Currency string          `json:"currency"`
}

// CreateIntent handles POST /v1/payment-intent.  The authenticated user
// buys course_id for amount; on success the client receives the provider
// client secret and completes the charge browser-side.  A still-pending
// earlier attempt for the same course answers 409 so the client resumes
// that intent instead of opening a second one.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req createIntentReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.CourseID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id required"})
    }
    if req.Currency == "" {
        req.Currency = "usd"
    }

    secret, err := h.Initiator.CreateIntent(c.Request().Context(), userID, req.CourseID, req.Amount, req.Currency)
    if err != nil {
        switch {
        case errors.Is(err, payment.ErrInvalidAmount):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
        case errors.Is(err, payment.ErrCourseMissing):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
        case errors.Is(err, payment.ErrUserMissing):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        case errors.Is(err, repository.ErrPaymentInProgress):
            return c.JSON(http.StatusConflict, echo.Map{"error": "a payment for this course is already in progress"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment intent failed"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"client_secret": secret})
}
