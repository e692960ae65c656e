package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Course is a row in the `courses` table.  The aggregate columns
// (EnrollmentCount, DurationMinutes, TotalLessons) are denormalized for
// cheap reads but are never set independently: EnrollmentCount is only
// mutated by the guarded insert in the enrollment repository, and the
// content aggregates are recomputed from sections/lessons whenever the
// content tree changes.
type Course struct {
    ID              uint64          // courses.id
    CreatorID       uint64          // courses.creator_id
    Title           string          // courses.title
    Description     string          // courses.description
    Category        string          // courses.category
    Price           decimal.Decimal // courses.price, major units (e.g. 29.99)
    EnrollmentCount uint32          // courses.enrollment_count
    AverageRating   float64         // courses.average_rating
    DurationMinutes uint32          // courses.duration_minutes (sum of lessons)
    TotalLessons    uint32          // courses.total_lessons
    CreatedAt       time.Time       // courses.created_at
    UpdatedAt       time.Time       // courses.updated_at
}

// Section groups lessons inside a course.
type Section struct {
    ID       uint64 // sections.id
    CourseID uint64 // sections.course_id
    Title    string // sections.title
    Position uint32 // sections.position, 1-based ordering within the course
}

// Lesson is a single unit of course content.  Video storage and streaming
// are handled outside this service; only the URL is recorded.
type Lesson struct {
    ID              uint64 // lessons.id
    SectionID       uint64 // lessons.section_id
    Title           string // lessons.title
    VideoURL        string // lessons.video_url
    DurationMinutes uint32 // lessons.duration_minutes
    Position        uint32 // lessons.position, 1-based ordering within the section
}

// Enrollment records the durable fact that a user has access to a course.
// The UNIQUE (user_id, course_id) key on the table is what makes enrollment
// at-most-once; there is deliberately no status column because enrollment
// has no intermediate states.
type Enrollment struct {
    ID         uint64    // enrollments.id
    UserID     uint64    // enrollments.user_id
    CourseID   uint64    // enrollments.course_id
    EnrolledAt time.Time // enrollments.enrolled_at
}
