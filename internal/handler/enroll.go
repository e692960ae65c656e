package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/enroll"
    "github.com/courseloom/course-marketplace/internal/repository"
)

// EnrollHandler covers the student-facing enrollment endpoints: direct
// enroll, membership check and the my-courses listing.
type EnrollHandler struct {
    Service     *enroll.Service
    Enrollments *repository.EnrollmentRepo
}

func NewEnrollHandler(s *enroll.Service, e *repository.EnrollmentRepo) *EnrollHandler {
    if s == nil || e == nil {
        panic("nil dependency passed to NewEnrollHandler")
    }
    return &EnrollHandler{Service: s, Enrollments: e}
}

type enrollReq struct {
    CourseID uint64 `json:"course_id"`
}

// Enroll handles POST /v1/enroll.  The enrollment service returns a result
// value rather than an error; the mapping to HTTP statuses happens here:
// missing course/user are 404, a duplicate enrollment is a 400 state
// conflict, storage faults are 500.
func (h *EnrollHandler) Enroll(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req enrollReq
    if err := c.Bind(&req); err != nil || req.CourseID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id required"})
    }

    res := h.Service.Enroll(c.Request().Context(), userID, req.CourseID)
    switch res.Message {
    case enroll.MsgCourseNotFound, enroll.MsgUserNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": res.Message})
    case enroll.MsgStorageFailure:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": res.Message})
    case enroll.MsgAlreadyEnrolled:
        return c.JSON(http.StatusBadRequest, res)
    default:
        return c.JSON(http.StatusCreated, res)
    }
}

// Check handles GET /v1/enroll/check?course_id=N and reports whether the
// authenticated user holds an enrollment.  Clients use it to decide
// between showing the buy button and the course player.
func (h *EnrollHandler) Check(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    courseID, err := strconv.ParseUint(c.QueryParam("course_id"), 10, 64)
    if err != nil || courseID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id required"})
    }

    enrolled, err := h.Enrollments.IsEnrolled(c.Request().Context(), userID, courseID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"enrolled": enrolled})
}

// MyCourses handles GET /v1/my-courses, listing the authenticated user's
// enrollments newest first.
func (h *EnrollHandler) MyCourses(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Enrollments.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
