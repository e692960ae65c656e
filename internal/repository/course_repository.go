package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/courseloom/course-marketplace/internal/model"
)

// CourseRepo provides CRUD operations for courses and their content tree
// (sections and lessons).  Aggregate columns on the course row
// (total_lessons, duration_minutes) are recomputed from the children inside
// the same transaction as any content mutation, so readers never observe a
// course whose aggregates disagree with its lessons.
type CourseRepo struct {
    db *sql.DB
}

// NewCourseRepo returns a new CourseRepo bound to the given database.
func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{db: db} }

// DB exposes the underlying handle for callers that need transactions
// spanning repositories.
func (r *CourseRepo) DB() *sql.DB { return r.db }

const courseColumns = `id, creator_id, title, description, category, price,
    enrollment_count, average_rating, duration_minutes, total_lessons, created_at, updated_at`

func scanCourse(row *sql.Row) (*model.Course, error) {
    var c model.Course
    err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.Category, &c.Price,
        &c.EnrollmentCount, &c.AverageRating, &c.DurationMinutes, &c.TotalLessons, &c.CreatedAt, &c.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &c, nil
}

// GetByID fetches a single course.  Returns ErrNotFound when absent.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (*model.Course, error) {
    return scanCourse(r.db.QueryRowContext(ctx,
        `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id))
}

// Create inserts a new course owned by the creator and populates the
// generated ID on the provided model.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO courses (creator_id, title, description, category, price) VALUES (?, ?, ?, ?, ?)`,
        c.CreatorID, c.Title, c.Description, c.Category, c.Price)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    return nil
}

// CourseSearchQuery defines filters & pagination for the public catalog.
type CourseSearchQuery struct {
    Query    string
    Category string
    Page     int
    PageSize int
}

// PublicCourseRow is the sanitized course shape returned to guests.  The
// creator's email and internal counters beyond enrollment_count are not
// exposed.
type PublicCourseRow struct {
    ID              uint64  `json:"id"`
    Title           string  `json:"title"`
    Description     string  `json:"description"`
    Category        string  `json:"category"`
    Price           string  `json:"price"`
    EnrollmentCount uint32  `json:"enrollment_count"`
    AverageRating   float64 `json:"average_rating"`
    TotalLessons    uint32  `json:"total_lessons"`
    DurationMinutes uint32  `json:"duration_minutes"`
}

// Search returns catalog rows matching the query plus the total count for
// pagination.  Title and description are matched case-insensitively.
func (r *CourseRepo) Search(ctx context.Context, q CourseSearchQuery) ([]PublicCourseRow, int64, error) {
    where := []string{}
    args := []any{}

    if q.Query != "" {
        where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
        needle := "%" + strings.ToLower(q.Query) + "%"
        args = append(args, needle, needle)
    }
    if q.Category != "" {
        where = append(where, "LOWER(category) = ?")
        args = append(args, strings.ToLower(q.Category))
    }

    cond := "1=1"
    if len(where) > 0 {
        cond = strings.Join(where, " AND ")
    }

    var total int64
    if err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM courses WHERE `+cond, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    if q.Page < 1 {
        q.Page = 1
    }
    if q.PageSize < 1 {
        q.PageSize = 20
    }
    offset := (q.Page - 1) * q.PageSize
    listArgs := append(append([]any{}, args...), q.PageSize, offset)

    rows, err := r.db.QueryContext(ctx,
        `SELECT id, title, description, category, price, enrollment_count, average_rating, total_lessons, duration_minutes
         FROM courses WHERE `+cond+` ORDER BY enrollment_count DESC, id LIMIT ? OFFSET ?`, listArgs...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    items := make([]PublicCourseRow, 0)
    for rows.Next() {
        var it PublicCourseRow
        if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.Category, &it.Price,
            &it.EnrollmentCount, &it.AverageRating, &it.TotalLessons, &it.DurationMinutes); err != nil {
            return nil, 0, err
        }
        items = append(items, it)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return items, total, nil
}

// ownerOf returns the creator_id of a course or ErrNotFound.
func (r *CourseRepo) ownerOf(ctx context.Context, courseID uint64) (uint64, error) {
    var owner uint64
    err := r.db.QueryRowContext(ctx,
        `SELECT creator_id FROM courses WHERE id = ?`, courseID).Scan(&owner)
    if err == sql.ErrNoRows {
        return 0, ErrNotFound
    }
    return owner, err
}

// AddSection appends a section to a course after verifying ownership.  The
// position is assigned as max(position)+1 within the course.
func (r *CourseRepo) AddSection(ctx context.Context, creatorID uint64, s *model.Section) error {
    owner, err := r.ownerOf(ctx, s.CourseID)
    if err != nil {
        return err
    }
    if owner != creatorID {
        return ErrForbidden
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO sections (course_id, title, position)
         SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM sections WHERE course_id = ?`,
        s.CourseID, s.Title, s.CourseID)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// AddLesson appends a lesson to a section and recomputes the owning
// course's aggregates in the same transaction.  Ownership is checked by
// joining the section back to its course.
func (r *CourseRepo) AddLesson(ctx context.Context, creatorID uint64, l *model.Lesson) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var courseID, owner uint64
    err = tx.QueryRowContext(ctx,
        `SELECT s.course_id, c.creator_id FROM sections s JOIN courses c ON c.id = s.course_id WHERE s.id = ?`,
        l.SectionID).Scan(&courseID, &owner)
    if err == sql.ErrNoRows {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if owner != creatorID {
        return ErrForbidden
    }

    res, err := tx.ExecContext(ctx,
        `INSERT INTO lessons (section_id, title, video_url, duration_minutes, position)
         SELECT ?, ?, ?, ?, COALESCE(MAX(position), 0) + 1 FROM lessons WHERE section_id = ?`,
        l.SectionID, l.Title, l.VideoURL, l.DurationMinutes, l.SectionID)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    l.ID = uint64(id)

    if err := r.recomputeAggregatesTx(ctx, tx, courseID); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// recomputeAggregatesTx refreshes total_lessons and duration_minutes from
// the content tree.  Runs inside the caller's transaction so the course row
// and its children move together.
func (r *CourseRepo) recomputeAggregatesTx(ctx context.Context, tx *sql.Tx, courseID uint64) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE courses c
         SET c.total_lessons = (
                 SELECT COUNT(*) FROM lessons l
                 JOIN sections s ON s.id = l.section_id
                 WHERE s.course_id = c.id),
             c.duration_minutes = (
                 SELECT COALESCE(SUM(l.duration_minutes), 0) FROM lessons l
                 JOIN sections s ON s.id = l.section_id
                 WHERE s.course_id = c.id)
         WHERE c.id = ?`,
        courseID)
    return err
}

// Sections returns the ordered content tree of a course: sections with
// their lessons.  Lesson video URLs are included; enforcement of who may
// actually play them happens at the handler layer via the enrollment check.
type SectionWithLessons struct {
    model.Section
    Lessons []model.Lesson `json:"lessons"`
}

func (r *CourseRepo) Sections(ctx context.Context, courseID uint64) ([]SectionWithLessons, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, course_id, title, position FROM sections WHERE course_id = ? ORDER BY position`,
        courseID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]SectionWithLessons, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var s model.Section
        if err := rows.Scan(&s.ID, &s.CourseID, &s.Title, &s.Position); err != nil {
            return nil, err
        }
        index[s.ID] = len(out)
        out = append(out, SectionWithLessons{Section: s, Lessons: []model.Lesson{}})
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(out) == 0 {
        return out, nil
    }
    lrows, err := r.db.QueryContext(ctx,
        `SELECT l.id, l.section_id, l.title, l.video_url, l.duration_minutes, l.position
         FROM lessons l
         JOIN sections s ON s.id = l.section_id
         WHERE s.course_id = ?
         ORDER BY s.position, l.position`,
        courseID)
    if err != nil {
        return nil, err
    }
    defer lrows.Close()
    for lrows.Next() {
        var l model.Lesson
        if err := lrows.Scan(&l.ID, &l.SectionID, &l.Title, &l.VideoURL, &l.DurationMinutes, &l.Position); err != nil {
            return nil, err
        }
        if i, ok := index[l.SectionID]; ok {
            out[i].Lessons = append(out[i].Lessons, l)
        }
    }
    if err := lrows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
