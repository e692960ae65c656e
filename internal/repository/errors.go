// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// and services to distinguish between failure scenarios without string
// matching. ErrNotFound covers missing users, courses, payments and gifts;
// the conflict sentinels map to expected business states and are surfaced
// as HTTP 400 rather than 500.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, e.g. a creator editing another creator's
// course. Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyEnrolled is returned by the guarded enrollment insert when the
// (user, course) pair already exists. It is an expected state, not a fault.
var ErrAlreadyEnrolled = errors.New("already enrolled")

// ErrPaymentInProgress is returned when a pending payment already exists
// for the same user and course, preventing duplicate payment intents.
var ErrPaymentInProgress = errors.New("payment already in progress")

// ErrGiftExhausted is returned when a gift code has no remaining copies or
// has been deactivated. The caller cannot distinguish "never existed" from
// "used up"; both present as an invalid code to the redeemer.
var ErrGiftExhausted = errors.New("gift already redeemed or invalid")
