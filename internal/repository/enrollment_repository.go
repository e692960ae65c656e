package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"
)

// EnrollmentRepo provides data access to the enrollments table, which is the
// authoritative record of who has access to which course.  The table carries
// a UNIQUE (user_id, course_id) key; every membership mutation goes through
// the guarded insert in EnrollTx so the denormalized
// courses.enrollment_count can never drift from the set it summarizes.
type EnrollmentRepo struct {
    db *sql.DB
}

// NewEnrollmentRepo returns a new EnrollmentRepo bound to the given database.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span this repository and others.
func (r *EnrollmentRepo) DB() *sql.DB { return r.db }

// IsEnrolled reports whether the user already holds an enrollment for the
// course.  Used by the enroll/check endpoint and as the pre-flight check in
// the enrollment service; the INSERT in EnrollTx remains the actual
// serialization point under concurrency.
func (r *EnrollmentRepo) IsEnrolled(ctx context.Context, userID, courseID uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM enrollments WHERE user_id = ? AND course_id = ? LIMIT 1`,
        userID, courseID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// EnrollTx performs the membership insert and the coupled counter increment
// within the provided transaction.  The INSERT is guarded by the UNIQUE
// (user_id, course_id) key: a duplicate attempt (double click, replayed
// webhook, gift redemption racing a direct enroll) hits error 1062 and
// returns ErrAlreadyEnrolled without touching the counter.  The counter
// increment only runs after the insert took effect, so
// enrollment_count == COUNT(*) per course holds after every commit.
func (r *EnrollmentRepo) EnrollTx(ctx context.Context, tx *sql.Tx, userID, courseID uint64) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO enrollments (user_id, course_id) VALUES (?, ?)`,
        userID, courseID)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrAlreadyEnrolled
        }
        return err
    }
    _, err = tx.ExecContext(ctx,
        `UPDATE courses SET enrollment_count = enrollment_count + 1 WHERE id = ?`,
        courseID)
    return err
}

// EnrolledCourseRow is the row shape returned by ListByUser for the
// my-courses endpoint.
type EnrolledCourseRow struct {
    CourseID        uint64    `json:"course_id"`
    Title           string    `json:"title"`
    Category        string    `json:"category"`
    TotalLessons    uint32    `json:"total_lessons"`
    DurationMinutes uint32    `json:"duration_minutes"`
    EnrolledAt      time.Time `json:"enrolled_at"`
}

// ListByUser returns the courses the user is enrolled in, newest first.
// When no enrollments exist an empty slice is returned.
func (r *EnrollmentRepo) ListByUser(ctx context.Context, userID uint64) ([]EnrolledCourseRow, error) {
    const q = `SELECT e.course_id, c.title, c.category, c.total_lessons, c.duration_minutes, e.enrolled_at
               FROM enrollments e
               JOIN courses c ON c.id = e.course_id
               WHERE e.user_id = ?
               ORDER BY e.enrolled_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make([]EnrolledCourseRow, 0)
    for rows.Next() {
        var it EnrolledCourseRow
        if err := rows.Scan(&it.CourseID, &it.Title, &it.Category, &it.TotalLessons, &it.DurationMinutes, &it.EnrolledAt); err != nil {
            return nil, err
        }
        items = append(items, it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return items, nil
}
