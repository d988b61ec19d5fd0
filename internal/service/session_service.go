package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/helpers"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrValidation      = errors.New("validation failed")
)

// OfferInput carries the fields a teacher submits when publishing an offer.
type OfferInput struct {
	Skill       string
	CreditsUsed int64
	DateTime    time.Time
}

// SessionService owns the session store surface: offers and queries.
// Booking-side transitions live on the BookingService orchestrator.
type SessionService interface {
	Offer(ctx context.Context, teacherID uint64, input OfferInput) (*models.Session, error)
	Get(ctx context.Context, sessionID uint64) (*models.Session, error)
	ListByTeacher(ctx context.Context, teacherID uint64) ([]*models.Session, error)
	ListByLearner(ctx context.Context, learnerID uint64) ([]*models.Session, error)
	ListTeachingBooked(ctx context.Context, teacherID uint64) ([]*models.Session, error)
	ListOpen(ctx context.Context, page, perPage int32) ([]*models.Session, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
}

func NewSessionService(sessionRepo repository.SessionRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo}
}

func (s *sessionService) Offer(ctx context.Context, teacherID uint64, input OfferInput) (*models.Session, error) {
	fields := map[string]string{}
	if input.Skill == "" {
		fields["skill"] = "skill is required"
	}
	if input.CreditsUsed < 0 {
		fields["credits_used"] = "credits must not be negative"
	}
	if input.DateTime.IsZero() {
		fields["date_time"] = "date and time are required"
	}
	if len(fields) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, helpers.EncodeValidationError(fields))
	}

	session := &models.Session{
		TeacherID:   teacherID,
		Skill:       input.Skill,
		CreditsUsed: input.CreditsUsed,
		DateTime:    input.DateTime,
		Status:      models.SessionStatusScheduled,
		Type:        models.SessionTypeService,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID uint64) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) ListByTeacher(ctx context.Context, teacherID uint64) ([]*models.Session, error) {
	return s.sessionRepo.ListByTeacher(ctx, teacherID)
}

func (s *sessionService) ListByLearner(ctx context.Context, learnerID uint64) ([]*models.Session, error) {
	return s.sessionRepo.ListByLearner(ctx, learnerID)
}

func (s *sessionService) ListTeachingBooked(ctx context.Context, teacherID uint64) ([]*models.Session, error) {
	return s.sessionRepo.ListTeachingBooked(ctx, teacherID)
}

func (s *sessionService) ListOpen(ctx context.Context, page, perPage int32) ([]*models.Session, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.sessionRepo.ListOpen(ctx, perPage, (page-1)*perPage)
}
