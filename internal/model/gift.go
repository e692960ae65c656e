package model

import "time"

// Gift is a redeemable enrollment voucher.  QRCodeData is an opaque unique
// token handed to the buyer; each redemption consumes one copy.
// RemainingCopies only ever decreases and never goes below zero: the
// repository enforces this with a single conditional UPDATE so that two
// concurrent redemptions of the last copy cannot both succeed.  IsActive
// flips to false in the same statement that takes the last copy.
type Gift struct {
    ID              uint64    // gifts.id
    CourseID        uint64    // gifts.course_id
    GiftedBy        uint64    // gifts.gifted_by (purchasing user)
    QRCodeData      string    // gifts.qr_code_data, unique token
    TotalCopies     uint32    // gifts.total_copies
    RemainingCopies uint32    // gifts.remaining_copies
    IsActive        bool      // gifts.is_active
    CreatedAt       time.Time // gifts.created_at
}
