package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/enroll"
    "github.com/courseloom/course-marketplace/internal/repository"
)

type enrollStoreStub struct {
    enrolled map[[2]uint64]bool
    inserts  int
}

func (s *enrollStoreStub) CourseExists(context.Context, uint64) (bool, error) { return true, nil }
func (s *enrollStoreStub) UserExists(context.Context, uint64) (bool, error)   { return true, nil }

func (s *enrollStoreStub) IsEnrolled(_ context.Context, userID, courseID uint64) (bool, error) {
    return s.enrolled[[2]uint64{userID, courseID}], nil
}

func (s *enrollStoreStub) Enroll(_ context.Context, userID, courseID uint64) error {
    if s.enrolled[[2]uint64{userID, courseID}] {
        return repository.ErrAlreadyEnrolled
    }
    s.enrolled[[2]uint64{userID, courseID}] = true
    s.inserts++
    return nil
}

func postEnroll(t *testing.T, h *EnrollHandler, userID uint64, body string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/enroll", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", userID)
    if err := h.Enroll(c); err != nil {
        t.Fatalf("Enroll returned error: %v", err)
    }
    return rec
}

func TestEnrollEndpointCreatesMembership(t *testing.T) {
    store := &enrollStoreStub{enrolled: map[[2]uint64]bool{}}
    h := NewEnrollHandler(enroll.New(store, nil), repository.NewEnrollmentRepo(nil))

    rec := postEnroll(t, h, 1, `{"course_id": 10}`)
    if rec.Code != http.StatusCreated {
        t.Fatalf("first enroll: status %d, want 201; body=%s", rec.Code, rec.Body.String())
    }
    if store.inserts != 1 {
        t.Fatalf("expected one membership insert, got %d", store.inserts)
    }
}

func TestEnrollEndpointRejectsDuplicate(t *testing.T) {
    store := &enrollStoreStub{enrolled: map[[2]uint64]bool{{1, 10}: true}}
    h := NewEnrollHandler(enroll.New(store, nil), repository.NewEnrollmentRepo(nil))

    rec := postEnroll(t, h, 1, `{"course_id": 10}`)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("duplicate enroll: status %d, want 400; body=%s", rec.Code, rec.Body.String())
    }
    if !strings.Contains(rec.Body.String(), enroll.MsgAlreadyEnrolled) {
        t.Fatalf("body missing duplicate message: %s", rec.Body.String())
    }
    if store.inserts != 0 {
        t.Fatalf("duplicate enroll must not insert")
    }
}

func TestEnrollEndpointRequiresCourseID(t *testing.T) {
    store := &enrollStoreStub{enrolled: map[[2]uint64]bool{}}
    h := NewEnrollHandler(enroll.New(store, nil), repository.NewEnrollmentRepo(nil))

    rec := postEnroll(t, h, 1, `{}`)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("missing course_id: status %d, want 400", rec.Code)
    }
}
