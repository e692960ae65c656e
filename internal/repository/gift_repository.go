package repository

import (
    "context"
    "database/sql"

    "github.com/courseloom/course-marketplace/internal/model"
)

// GiftRepo provides data access to the gifts table.  The interesting part
// is RedeemOne: copy consumption happens in a single conditional UPDATE so
// the remaining_copies > 0 guard and the decrement are one storage
// operation.  Two concurrent redemptions of a code with one copy left race
// on rows-affected, and exactly one of them wins.
type GiftRepo struct {
    db *sql.DB
}

// NewGiftRepo returns a new GiftRepo bound to the given database.
func NewGiftRepo(db *sql.DB) *GiftRepo { return &GiftRepo{db: db} }

// Create inserts a gift with all copies available.  The qr_code_data token
// is generated by the caller and must be unique.
func (r *GiftRepo) Create(ctx context.Context, g *model.Gift) error {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO gifts (course_id, gifted_by, qr_code_data, total_copies, remaining_copies, is_active)
         VALUES (?, ?, ?, ?, ?, 1)`,
        g.CourseID, g.GiftedBy, g.QRCodeData, g.TotalCopies, g.TotalCopies)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    g.ID = uint64(id)
    g.RemainingCopies = g.TotalCopies
    g.IsActive = true
    return nil
}

// GetByCode fetches a gift by its redemption token.  Returns ErrNotFound
// when the token does not exist at all.
func (r *GiftRepo) GetByCode(ctx context.Context, qrCodeData string) (*model.Gift, error) {
    var g model.Gift
    err := r.db.QueryRowContext(ctx,
        `SELECT id, course_id, gifted_by, qr_code_data, total_copies, remaining_copies, is_active, created_at
         FROM gifts WHERE qr_code_data = ? LIMIT 1`,
        qrCodeData).Scan(&g.ID, &g.CourseID, &g.GiftedBy, &g.QRCodeData, &g.TotalCopies, &g.RemainingCopies, &g.IsActive, &g.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &g, nil
}

// RedeemOne atomically consumes one copy of an active gift and returns the
// gift row as it stands after the decrement.  MySQL applies SET clauses
// left to right, so is_active reads the already-decremented
// remaining_copies and flips to 0 in the same statement that takes the
// last copy.  Zero rows affected means the code is inactive, exhausted or
// unknown, all reported as ErrGiftExhausted, which the handler surfaces
// as "already redeemed or invalid".
func (r *GiftRepo) RedeemOne(ctx context.Context, qrCodeData string) (*model.Gift, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE gifts
         SET remaining_copies = remaining_copies - 1,
             is_active = remaining_copies > 0
         WHERE qr_code_data = ? AND is_active = 1 AND remaining_copies > 0`,
        qrCodeData)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, ErrGiftExhausted
    }
    return r.GetByCode(ctx, qrCodeData)
}
