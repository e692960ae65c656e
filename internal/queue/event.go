// Package queue defines message payloads exchanged over the message broker.
package queue

// EnrollmentCompletedEvent is published when a user gains access to a
// course, whatever the path (payment webhook, direct enroll, gift
// redemption).  It carries enough for downstream consumers to notify or
// aggregate without querying the primary database.
type EnrollmentCompletedEvent struct {
    UserID     uint64 `json:"user_id"`
    CourseID   uint64 `json:"course_id"`
    EnrolledAt string `json:"enrolled_at"`
}

// EnrollmentFailedEvent is published when the webhook reconciler swallows
// an enrollment failure after a settled payment.  The webhook answers 200
// to the provider in that case, so this event is the only signal that a
// paying user did not get their course; alerting keys off its rate.
type EnrollmentFailedEvent struct {
    UserID   uint64 `json:"user_id"`
    CourseID uint64 `json:"course_id"`
    Reason   string `json:"reason"`
    FailedAt string `json:"failed_at"`
}
