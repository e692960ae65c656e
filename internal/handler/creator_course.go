package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/courseloom/course-marketplace/internal/model"
    "github.com/courseloom/course-marketplace/internal/repository"
)

// CreatorHandler covers the authoring surface: creating courses, building
// their content tree and reading sales analytics.  Every method assumes
// JWTAuth plus RequireRole(CREATOR) already ran; ownership of the touched
// course is still re-verified per request in the repository because a
// creator role alone does not grant access to other creators' courses.
type CreatorHandler struct {
    Courses     *repository.CourseRepo
    Payments    *repository.PaymentRepo
    Enrollments *repository.EnrollmentRepo
}

func NewCreatorHandler(courses *repository.CourseRepo, payments *repository.PaymentRepo, enrollments *repository.EnrollmentRepo) *CreatorHandler {
    if courses == nil || payments == nil || enrollments == nil {
        panic("nil repository passed to NewCreatorHandler")
    }
    return &CreatorHandler{Courses: courses, Payments: payments, Enrollments: enrollments}
}

type createCourseReq struct {
    Title       string          `json:"title"`
    Description string          `json:"description"`
    Category    string          `json:"category"`
    Price       decimal.Decimal `json:"price"`
}

type createSectionReq struct {
    Title string `json:"title"`
}

type createLessonReq struct {
    Title           string `json:"title"`
    VideoURL        string `json:"video_url"`
    DurationMinutes uint32 `json:"duration_minutes"`
}

// CreateCourse handles POST /v1/creator/courses.
func (h *CreatorHandler) CreateCourse(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createCourseReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Title = strings.TrimSpace(req.Title)
    if req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
    }
    if req.Price.Sign() < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
    }

    course := &model.Course{
        CreatorID:   userID,
        Title:       req.Title,
        Description: req.Description,
        Category:    strings.TrimSpace(req.Category),
        Price:       req.Price,
    }
    if err := h.Courses.Create(c.Request().Context(), course); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create course failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": course.ID})
}

// CreateSection handles POST /v1/creator/courses/:id/sections.  The
// position is assigned server-side so concurrent creators cannot collide.
func (h *CreatorHandler) CreateSection(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    courseID, err := pathID(c, "id")
    if err != nil || courseID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
    }
    var req createSectionReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
    }

    section := &model.Section{CourseID: courseID, Title: strings.TrimSpace(req.Title)}
    if err := h.Courses.AddSection(c.Request().Context(), userID, section); err != nil {
        switch {
        case errors.Is(err, repository.ErrNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "not your course"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create section failed"})
        }
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": section.ID})
}

// CreateLesson handles POST /v1/creator/sections/:id/lessons.  Course
// aggregates (total_lessons, duration_minutes) are refreshed in the same
// transaction as the insert.
func (h *CreatorHandler) CreateLesson(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    sectionID, err := pathID(c, "id")
    if err != nil || sectionID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid section id"})
    }
    var req createLessonReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
    }

    lesson := &model.Lesson{
        SectionID:       sectionID,
        Title:           strings.TrimSpace(req.Title),
        VideoURL:        strings.TrimSpace(req.VideoURL),
        DurationMinutes: req.DurationMinutes,
    }
    if err := h.Courses.AddLesson(c.Request().Context(), userID, lesson); err != nil {
        switch {
        case errors.Is(err, repository.ErrNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "section not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "not your course"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lesson failed"})
        }
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": lesson.ID})
}

// Analytics handles GET /v1/creator/analytics: per-course enrollment
// counts plus revenue summed from succeeded payments only.  Pending and
// failed rows never count towards revenue.
func (h *CreatorHandler) Analytics(c echo.Context) error {
    userID, err := currentUser(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    rows, err := h.Payments.RevenueByCreator(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"courses": rows})
}
