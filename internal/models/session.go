package models

import "time"

// Session status values.
const (
	SessionStatusScheduled = "Scheduled"
	SessionStatusCompleted = "Completed"
	SessionStatusCancelled = "Cancelled"
)

// Session type values. An offer starts as Service and becomes a Booking
// once a learner subscribes.
const (
	SessionTypeService = "Service"
	SessionTypeBooking = "Booking"
)

// Session is a scheduled teach/learn slot. A session is booked iff
// LearnerID is set and Subscribed is true.
type Session struct {
	ID           uint64    `db:"id"`
	TeacherID    uint64    `db:"teacher_id"`
	LearnerID    *uint64   `db:"learner_id"`
	Skill        string    `db:"skill"`
	CreditsUsed  int64     `db:"credits_used"`
	DateTime     time.Time `db:"date_time"`
	Status       string    `db:"status"`
	Type         string    `db:"type"`
	Subscribed   bool      `db:"subscribed"`
	Unsubscribed bool      `db:"unsubscribed"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Booked reports whether a learner holds this session.
func (s *Session) Booked() bool {
	return s.LearnerID != nil && s.Subscribed
}

// Billable reports whether credit movement against this session is valid.
func (s *Session) Billable() bool {
	return s.Subscribed && !s.Unsubscribed
}
