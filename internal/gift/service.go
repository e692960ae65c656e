// Package gift implements voucher purchase and redemption.  A gift is a
// bounded number of enrollment copies behind one opaque token; redemption
// consumes a copy atomically and then hands off to the shared enrollment
// service, so a redeemed copy grants access through exactly the same path
// as a paid or free enrollment.
package gift

import (
    "context"
    "errors"
    "log"

    "github.com/google/uuid"

    "github.com/courseloom/course-marketplace/internal/enroll"
    "github.com/courseloom/course-marketplace/internal/model"
    "github.com/courseloom/course-marketplace/internal/repository"
)

// Store is the persistence surface for gifts.  *repository.GiftRepo
// satisfies it; tests substitute a fake whose RedeemOne mimics the
// single-statement conditional decrement.
type Store interface {
    Create(ctx context.Context, g *model.Gift) error
    GetByCode(ctx context.Context, qrCodeData string) (*model.Gift, error)
    RedeemOne(ctx context.Context, qrCodeData string) (*model.Gift, error)
}

// Enroller matches enroll.Service.
type Enroller interface {
    Enroll(ctx context.Context, userID, courseID uint64) enroll.Result
}

// Service handles gift creation and redemption.
type Service struct {
    store    Store
    enroller Enroller
}

// New constructs a Service.
func New(store Store, enroller Enroller) *Service {
    if store == nil || enroller == nil {
        panic("nil dependency passed to gift.New")
    }
    return &Service{store: store, enroller: enroller}
}

// Errors surfaced by Create.
var ErrInvalidCopies = errors.New("number of copies must be at least 1")

// Create buys a gift of the course with the given number of copies and
// returns the redemption token.  The token doubles as the QR payload.
func (s *Service) Create(ctx context.Context, giftedBy, courseID uint64, copies uint32) (string, error) {
    if copies < 1 {
        return "", ErrInvalidCopies
    }
    g := &model.Gift{
        CourseID:    courseID,
        GiftedBy:    giftedBy,
        QRCodeData:  uuid.NewString(),
        TotalCopies: copies,
    }
    if err := s.store.Create(ctx, g); err != nil {
        return "", err
    }
    return g.QRCodeData, nil
}

// Redeem consumes one copy of the gift for the user and enrolls them in
// the gifted course.  The copy is consumed and persisted before
// enrollment is attempted: the atomic decrement is the serialization
// point, so two concurrent redemptions of a last copy cannot both pass.
// If the user turns out to be already enrolled, the spent copy is not
// restored, same behavior as handing a paper voucher to someone who
// already owns the course.
func (s *Service) Redeem(ctx context.Context, userID uint64, qrCodeData string) enroll.Result {
    g, err := s.store.RedeemOne(ctx, qrCodeData)
    if err != nil {
        if errors.Is(err, repository.ErrGiftExhausted) || errors.Is(err, repository.ErrNotFound) {
            return enroll.Result{Success: false, Message: "This gift has already been redeemed or is invalid"}
        }
        log.Printf("gift: redeem failed code=%s user=%d: %v", qrCodeData, userID, err)
        return enroll.Result{Success: false, Message: "Gift redemption failed"}
    }
    return s.enroller.Enroll(ctx, userID, g.CourseID)
}
