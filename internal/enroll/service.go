// Package enroll implements the single enrollment path shared by every
// caller that can grant course access: the direct enroll endpoint, the
// payment webhook reconciler and gift redemption.  All of them go through
// Service.Enroll so the membership guarantees live in exactly one place.
package enroll

import (
    "context"
    "errors"
    "log"

    "github.com/courseloom/course-marketplace/internal/repository"
)

// Store is the persistence surface the service needs.  The production
// implementation is SQLStore below; tests substitute an in-memory fake.
type Store interface {
    // CourseExists reports whether the course row is present.
    CourseExists(ctx context.Context, courseID uint64) (bool, error)
    // UserExists reports whether an active user row is present.
    UserExists(ctx context.Context, userID uint64) (bool, error)
    // IsEnrolled reports current membership for the pair.
    IsEnrolled(ctx context.Context, userID, courseID uint64) (bool, error)
    // Enroll atomically records membership and bumps the course counter.
    // Must return repository.ErrAlreadyEnrolled when the pair exists.
    Enroll(ctx context.Context, userID, courseID uint64) error
}

// Events receives notifications after a successful enrollment.  Nil is a
// valid publisher; the service then skips notification entirely.
type Events interface {
    EnrollmentCompleted(ctx context.Context, userID, courseID uint64)
}

// Result is the outcome of an enrollment attempt.  The service never
// returns a Go error past its boundary: three independent callers (webhook,
// direct endpoint, gift redemption) each decide for themselves whether a
// failure is fatal to their own flow, and a result value keeps that
// decision out of this package.
type Result struct {
    Success          bool   `json:"success"`
    Message          string `json:"message"`
    EnrolledCourseID uint64 `json:"enrolled_course_id,omitempty"`
}

// Messages returned in Result.  Handlers map them onto HTTP statuses.
const (
    MsgCourseNotFound  = "Course not found"
    MsgUserNotFound    = "User not found"
    MsgAlreadyEnrolled = "Already enrolled"
    MsgEnrolled        = "Enrollment successful"
    MsgStorageFailure  = "Enrollment could not be recorded"
)

// Service performs idempotent, at-most-once enrollment.
type Service struct {
    store  Store
    events Events
}

// New constructs a Service. events may be nil.
func New(store Store, events Events) *Service {
    if store == nil {
        panic("nil store passed to enroll.New")
    }
    return &Service{store: store, events: events}
}

// Enroll grants userID access to courseID.  Calling it twice for the same
// pair leaves exactly one membership row and a counter incremented exactly
// once: the pre-check catches the common repeat and the guarded insert in
// the store closes the race window between two concurrent attempts.
func (s *Service) Enroll(ctx context.Context, userID, courseID uint64) Result {
    ok, err := s.store.CourseExists(ctx, courseID)
    if err != nil {
        log.Printf("enroll: course lookup failed user=%d course=%d: %v", userID, courseID, err)
        return Result{Success: false, Message: MsgStorageFailure}
    }
    if !ok {
        return Result{Success: false, Message: MsgCourseNotFound}
    }

    ok, err = s.store.UserExists(ctx, userID)
    if err != nil {
        log.Printf("enroll: user lookup failed user=%d course=%d: %v", userID, courseID, err)
        return Result{Success: false, Message: MsgStorageFailure}
    }
    if !ok {
        return Result{Success: false, Message: MsgUserNotFound}
    }

    enrolled, err := s.store.IsEnrolled(ctx, userID, courseID)
    if err != nil {
        log.Printf("enroll: membership check failed user=%d course=%d: %v", userID, courseID, err)
        return Result{Success: false, Message: MsgStorageFailure}
    }
    if enrolled {
        return Result{Success: false, Message: MsgAlreadyEnrolled}
    }

    if err := s.store.Enroll(ctx, userID, courseID); err != nil {
        if errors.Is(err, repository.ErrAlreadyEnrolled) {
            // Lost the race to a concurrent attempt; same outcome as the
            // pre-check, and just as harmless.
            return Result{Success: false, Message: MsgAlreadyEnrolled}
        }
        log.Printf("enroll: insert failed user=%d course=%d: %v", userID, courseID, err)
        return Result{Success: false, Message: MsgStorageFailure}
    }

    if s.events != nil {
        s.events.EnrollmentCompleted(ctx, userID, courseID)
    }
    return Result{Success: true, Message: MsgEnrolled, EnrolledCourseID: courseID}
}
