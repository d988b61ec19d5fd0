package repository

import "errors"

// Sentinel errors surfaced by repositories so services can map them to the
// API error taxonomy without string matching.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicatePaymentRef = errors.New("duplicate payment reference")
	ErrAlreadyBooked       = errors.New("session already booked")
	ErrSameLearner         = errors.New("session already booked by this learner")
	ErrInvalidTransition   = errors.New("invalid session state transition")
	ErrPostNotFound        = errors.New("post not found")
	ErrOrderNotFound       = errors.New("payment order not found")
)
