package enroll

import (
    "context"
    "errors"
    "testing"

    "github.com/courseloom/course-marketplace/internal/repository"
)

type storeStub struct {
    courses    map[uint64]bool
    users      map[uint64]bool
    enrolled   map[[2]uint64]bool
    enrollErr  error
    enrollHits int
}

func newStoreStub() *storeStub {
    return &storeStub{
        courses:  map[uint64]bool{10: true},
        users:    map[uint64]bool{1: true},
        enrolled: map[[2]uint64]bool{},
    }
}

func (s *storeStub) CourseExists(_ context.Context, courseID uint64) (bool, error) {
    return s.courses[courseID], nil
}

func (s *storeStub) UserExists(_ context.Context, userID uint64) (bool, error) {
    return s.users[userID], nil
}

func (s *storeStub) IsEnrolled(_ context.Context, userID, courseID uint64) (bool, error) {
    return s.enrolled[[2]uint64{userID, courseID}], nil
}

func (s *storeStub) Enroll(_ context.Context, userID, courseID uint64) error {
    s.enrollHits++
    if s.enrollErr != nil {
        return s.enrollErr
    }
    key := [2]uint64{userID, courseID}
    if s.enrolled[key] {
        return repository.ErrAlreadyEnrolled
    }
    s.enrolled[key] = true
    return nil
}

type eventsStub struct {
    completed [][2]uint64
}

func (e *eventsStub) EnrollmentCompleted(_ context.Context, userID, courseID uint64) {
    e.completed = append(e.completed, [2]uint64{userID, courseID})
}

func TestEnrollSuccess(t *testing.T) {
    store := newStoreStub()
    events := &eventsStub{}
    svc := New(store, events)

    res := svc.Enroll(context.Background(), 1, 10)
    if !res.Success {
        t.Fatalf("expected success, got %+v", res)
    }
    if res.Message != MsgEnrolled {
        t.Fatalf("unexpected message: %q", res.Message)
    }
    if res.EnrolledCourseID != 10 {
        t.Fatalf("unexpected course id: %d", res.EnrolledCourseID)
    }
    if len(events.completed) != 1 {
        t.Fatalf("expected one completion event, got %d", len(events.completed))
    }
}

func TestEnrollCourseNotFound(t *testing.T) {
    svc := New(newStoreStub(), nil)
    res := svc.Enroll(context.Background(), 1, 999)
    if res.Success || res.Message != MsgCourseNotFound {
        t.Fatalf("expected course-not-found, got %+v", res)
    }
}

func TestEnrollUserNotFound(t *testing.T) {
    svc := New(newStoreStub(), nil)
    res := svc.Enroll(context.Background(), 42, 10)
    if res.Success || res.Message != MsgUserNotFound {
        t.Fatalf("expected user-not-found, got %+v", res)
    }
}

func TestEnrollIdempotent(t *testing.T) {
    store := newStoreStub()
    events := &eventsStub{}
    svc := New(store, events)

    first := svc.Enroll(context.Background(), 1, 10)
    second := svc.Enroll(context.Background(), 1, 10)

    if !first.Success {
        t.Fatalf("first enrollment should succeed: %+v", first)
    }
    if second.Success || second.Message != MsgAlreadyEnrolled {
        t.Fatalf("second enrollment should be already-enrolled, got %+v", second)
    }
    // Only the first attempt reaches the store insert; the repeat is
    // caught by the membership pre-check.
    if store.enrollHits != 1 {
        t.Fatalf("expected 1 insert attempt, got %d", store.enrollHits)
    }
    if len(events.completed) != 1 {
        t.Fatalf("expected exactly one completion event, got %d", len(events.completed))
    }
}

func TestEnrollRaceLostMapsToAlreadyEnrolled(t *testing.T) {
    // The pre-check passes but the guarded insert loses to a concurrent
    // attempt that committed in between.
    store := newStoreStub()
    store.enrollErr = repository.ErrAlreadyEnrolled
    events := &eventsStub{}
    svc := New(store, events)

    res := svc.Enroll(context.Background(), 1, 10)
    if res.Success || res.Message != MsgAlreadyEnrolled {
        t.Fatalf("expected already-enrolled after lost race, got %+v", res)
    }
    if len(events.completed) != 0 {
        t.Fatalf("no event should fire for a lost race")
    }
}

func TestEnrollStorageFailure(t *testing.T) {
    store := newStoreStub()
    store.enrollErr = errors.New("connection reset")
    svc := New(store, nil)

    res := svc.Enroll(context.Background(), 1, 10)
    if res.Success || res.Message != MsgStorageFailure {
        t.Fatalf("expected storage failure result, got %+v", res)
    }
}
