// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file defines the public catalog: unauthenticated users
// can list courses, read a course with its content tree, and search by
// text or category.  Creator identities and raw video URLs are kept out of
// guest responses.

package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/repository"
)

// CatalogHandler aggregates the repositories needed for public browsing.
type CatalogHandler struct {
    Courses     *repository.CourseRepo
    Enrollments *repository.EnrollmentRepo
}

func NewCatalogHandler(courses *repository.CourseRepo, enrollments *repository.EnrollmentRepo) *CatalogHandler {
    if courses == nil || enrollments == nil {
        panic("nil repository passed to NewCatalogHandler")
    }
    return &CatalogHandler{Courses: courses, Enrollments: enrollments}
}

// publicLesson hides the video URL from guests; only enrolled users get
// playable content through the detail endpoint.
type publicLesson struct {
    ID              uint64 `json:"id"`
    Title           string `json:"title"`
    DurationMinutes uint32 `json:"duration_minutes"`
    Position        uint32 `json:"position"`
    VideoURL        string `json:"video_url,omitempty"`
}

type publicSection struct {
    ID       uint64         `json:"id"`
    Title    string         `json:"title"`
    Position uint32         `json:"position"`
    Lessons  []publicLesson `json:"lessons"`
}

// List handles GET /v1/courses with optional category and pagination
// query parameters.  It is the same search path with an empty query.
func (h *CatalogHandler) List(c echo.Context) error {
    return h.search(c, "")
}

// Search handles GET /v1/search/courses?q=...
func (h *CatalogHandler) Search(c echo.Context) error {
    return h.search(c, strings.TrimSpace(c.QueryParam("q")))
}

func (h *CatalogHandler) search(c echo.Context, q string) error {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    size, _ := strconv.Atoi(c.QueryParam("page_size"))
    query := repository.CourseSearchQuery{
        Query:    q,
        Category: strings.TrimSpace(c.QueryParam("category")),
        Page:     page,
        PageSize: size,
    }
    items, total, err := h.Courses.Search(c.Request().Context(), query)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "total": total,
    })
}

// Get handles GET /v1/courses/:id and returns the course with its ordered
// sections and lessons.  Video URLs appear only when the requester is
// enrolled; guests and non-enrolled users see the outline without
// playable links.  The endpoint is public, so authentication is optional:
// a valid bearer just unlocks the URLs.
func (h *CatalogHandler) Get(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
    }
    ctx := c.Request().Context()

    course, err := h.Courses.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    sections, err := h.Courses.Sections(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    withVideo := false
    if uid, ok := c.Get("user_id").(uint64); ok && uid != 0 {
        enrolled, err := h.Enrollments.IsEnrolled(ctx, uid, id)
        if err == nil && enrolled {
            withVideo = true
        }
    }

    out := make([]publicSection, 0, len(sections))
    for _, s := range sections {
        ps := publicSection{ID: s.ID, Title: s.Title, Position: s.Position, Lessons: make([]publicLesson, 0, len(s.Lessons))}
        for _, l := range s.Lessons {
            pl := publicLesson{ID: l.ID, Title: l.Title, DurationMinutes: l.DurationMinutes, Position: l.Position}
            if withVideo {
                pl.VideoURL = l.VideoURL
            }
            ps.Lessons = append(ps.Lessons, pl)
        }
        out = append(out, ps)
    }

    return c.JSON(http.StatusOK, echo.Map{
        "id":               course.ID,
        "title":            course.Title,
        "description":      course.Description,
        "category":         course.Category,
        "price":            course.Price,
        "enrollment_count": course.EnrollmentCount,
        "average_rating":   course.AverageRating,
        "total_lessons":    course.TotalLessons,
        "duration_minutes": course.DurationMinutes,
        "sections":         out,
    })
}
