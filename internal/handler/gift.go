package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    qrcode "github.com/skip2/go-qrcode"

    "github.com/courseloom/course-marketplace/internal/enroll"
    "github.com/courseloom/course-marketplace/internal/gift"
    "github.com/courseloom/course-marketplace/internal/repository"
)

// GiftHandler exposes gift purchase, redemption and the QR image for a
// gift token.
type GiftHandler struct {
    Service *gift.Service
    Gifts   *repository.GiftRepo
    Courses *repository.CourseRepo
}

func NewGiftHandler(s *gift.Service, g *repository.GiftRepo, courses *repository.CourseRepo) *GiftHandler {
    if s == nil || g == nil || courses == nil {
        panic("nil dependency passed to NewGiftHandler")
    }
    return &GiftHandler{Service: s, Gifts: g, Courses: courses}
}

type createGiftReq struct {
    CourseID uint64 `json:"course_id"`
    Copies   uint32 `json:"copies"`
}

type redeemGiftReq struct {
    QRCodeData string `json:"qr_code_data"`
}

// Create handles POST /v1/gifts.  Any authenticated user can buy a gift of
// an existing course; the returned qr_data token is what recipients redeem
// and what the QR endpoint renders.
func (h *GiftHandler) Create(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createGiftReq
    if err := c.Bind(&req); err != nil || req.CourseID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id required"})
    }

    ctx := c.Request().Context()
    if _, err := h.Courses.GetByID(ctx, req.CourseID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    token, err := h.Service.Create(ctx, userID, req.CourseID, req.Copies)
    if err != nil {
        if errors.Is(err, gift.ErrInvalidCopies) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "copies must be at least 1"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "gift creation failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"qr_data": token})
}

// Redeem handles POST /v1/gifts/redeem.  The result mirrors the enroll
// endpoint: exhausted or unknown tokens come back as 400 with a single
// message that does not reveal which of the two it was.
func (h *GiftHandler) Redeem(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req redeemGiftReq
    if err := c.Bind(&req); err != nil || req.QRCodeData == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code_data required"})
    }

    res := h.Service.Redeem(c.Request().Context(), userID, req.QRCodeData)
    switch {
    case res.Success:
        return c.JSON(http.StatusOK, res)
    case res.Message == enroll.MsgAlreadyEnrolled:
        // The copy was consumed but the user already owns the course.
        return c.JSON(http.StatusOK, res)
    case res.Message == enroll.MsgStorageFailure || res.Message == "Gift redemption failed":
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": res.Message})
    default:
        return c.JSON(http.StatusBadRequest, res)
    }
}

// QR handles GET /v1/gifts/:code/qr and renders the gift token as a PNG so
// buyers can print or forward it.  Only the token itself is encoded; the
// image carries no course or buyer information.
func (h *GiftHandler) QR(c echo.Context) error {
    code := c.Param("code")
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
    }
    if _, err := h.Gifts.GetByCode(c.Request().Context(), code); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "gift not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    png, err := qrcode.Encode(code, qrcode.Medium, 256)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr encoding failed"})
    }
    return c.Blob(http.StatusOK, "image/png", png)
}
