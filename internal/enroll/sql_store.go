package enroll

import (
    "context"
    "errors"

    "github.com/courseloom/course-marketplace/internal/repository"
)

// SQLStore adapts the repository layer to the Store interface.  The Enroll
// method is the only place in the codebase that opens the
// enrollments+courses transaction, which keeps the counter coupling rule in
// one spot.
type SQLStore struct {
    Users       *repository.UserRepo
    Courses     *repository.CourseRepo
    Enrollments *repository.EnrollmentRepo
}

// NewSQLStore wires the repositories into a Store.
func NewSQLStore(users *repository.UserRepo, courses *repository.CourseRepo, enrollments *repository.EnrollmentRepo) *SQLStore {
    if users == nil || courses == nil || enrollments == nil {
        panic("nil repository passed to enroll.NewSQLStore")
    }
    return &SQLStore{Users: users, Courses: courses, Enrollments: enrollments}
}

func (s *SQLStore) CourseExists(ctx context.Context, courseID uint64) (bool, error) {
    _, err := s.Courses.GetByID(ctx, courseID)
    if errors.Is(err, repository.ErrNotFound) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

func (s *SQLStore) UserExists(ctx context.Context, userID uint64) (bool, error) {
    return s.Users.Exists(ctx, userID)
}

func (s *SQLStore) IsEnrolled(ctx context.Context, userID, courseID uint64) (bool, error) {
    return s.Enrollments.IsEnrolled(ctx, userID, courseID)
}

// Enroll runs the guarded insert and the counter increment in one
// transaction.  On ErrAlreadyEnrolled nothing was written and the
// transaction is rolled back.
func (s *SQLStore) Enroll(ctx context.Context, userID, courseID uint64) error {
    tx, err := s.Enrollments.DB().BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := s.Enrollments.EnrollTx(ctx, tx, userID, courseID); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

var _ Store = (*SQLStore)(nil)
