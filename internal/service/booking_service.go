package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/logger"
)

var (
	ErrAlreadyBooked      = errors.New("session is already booked")
	ErrSessionNotBookable = errors.New("session can no longer be booked")
	ErrUnauthorized       = errors.New("not allowed")
	ErrNotBillable        = errors.New("session is not billable")
)

// BookingService coordinates the session store and the ledger. Booking is a
// server-side saga: claim the session, then debit the learner, and compensate
// the claim when the debit fails so no half-booked state survives.
type BookingService interface {
	BookSession(ctx context.Context, learnerID, sessionID uint64) (*models.Session, error)
	CompleteAndEarn(ctx context.Context, sessionID uint64) (*models.Session, error)
	DeleteSession(ctx context.Context, actorID, sessionID uint64) error
	HandleParticipantJoined(ctx context.Context, sessionID, userID uint64)
	HandleParticipantLeft(ctx context.Context, sessionID, userID uint64)
}

// BookingTimers holds the deferred-task settings for bookings.
type BookingTimers struct {
	ReminderLead    time.Duration
	AutoDeleteDelay time.Duration
}

// EscalationCounters is the slice of the escalation engine the booking flow
// touches: strike counters are dropped once their session is over, so a later
// call on a reused session id starts a fresh ladder.
type EscalationCounters interface {
	ClearSession(sessionID uint64)
}

type bookingService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	notifRepo   repository.NotificationRepository
	ledger      LedgerService
	email       EmailService
	scheduler   Scheduler
	escalations EscalationCounters
	timers      BookingTimers
	log         *logger.Logger
	now         func() time.Time
}

func NewBookingService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	ledger LedgerService,
	email EmailService,
	scheduler Scheduler,
	escalations EscalationCounters,
	timers BookingTimers,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		ledger:      ledger,
		email:       email,
		scheduler:   scheduler,
		escalations: escalations,
		timers:      timers,
		log:         log,
		now:         time.Now,
	}
}

func (s *bookingService) BookSession(ctx context.Context, learnerID, sessionID uint64) (*models.Session, error) {
	err := s.sessionRepo.Claim(ctx, sessionID, learnerID)
	switch {
	case err == nil:
		// claimed below
	case errors.Is(err, repository.ErrSameLearner):
		// Repeated subscribe by the same learner is an idempotent success.
		return s.fetch(ctx, sessionID)
	case errors.Is(err, repository.ErrSessionNotFound):
		return nil, ErrSessionNotFound
	case errors.Is(err, repository.ErrAlreadyBooked):
		return nil, ErrAlreadyBooked
	case errors.Is(err, repository.ErrInvalidTransition):
		return nil, ErrSessionNotBookable
	default:
		return nil, fmt.Errorf("failed to claim session: %w", err)
	}

	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.CreditsUsed > 0 {
		if _, err := s.ledger.Debit(ctx, learnerID, session.CreditsUsed, &sessionID); err != nil {
			// Compensate the claim so the offer goes back on the market.
			if relErr := s.sessionRepo.ReleaseClaim(ctx, sessionID, learnerID); relErr != nil {
				s.log.WithSessionID(sessionID).WithError(relErr).Error("failed to release claim after debit failure")
			}
			return nil, err
		}
	}

	session, err = s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.notifRepo.Append(ctx, session.TeacherID,
		fmt.Sprintf("Your %s session was booked", session.Skill),
		models.NotificationTypeCourse); err != nil {
		s.log.WithSessionID(sessionID).WithError(err).Warn("failed to append booking notification")
	}

	s.dispatchConfirmations(session, learnerID)
	s.scheduleReminder(session, learnerID)

	return session, nil
}

// CompleteAndEarn marks the session completed and credits the teacher.
// Credit movement is only valid while the session is subscribed and not
// unsubscribed.
func (s *bookingService) CompleteAndEarn(ctx context.Context, sessionID uint64) (*models.Session, error) {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Billable() {
		return nil, ErrNotBillable
	}

	if err := s.sessionRepo.MarkCompleted(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, ErrSessionNotBookable
		}
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	if session.CreditsUsed > 0 {
		if _, err := s.ledger.Earn(ctx, session.TeacherID, session.CreditsUsed, &sessionID); err != nil {
			return nil, err
		}
	}

	s.scheduler.Cancel(reminderKey(sessionID))
	s.scheduler.Cancel(autoDeleteKey(sessionID))
	s.clearEscalations(sessionID)

	session.Status = models.SessionStatusCompleted
	return session, nil
}

// DeleteSession hard-removes an offer. Only the owning teacher may delete.
func (s *bookingService) DeleteSession(ctx context.Context, actorID, sessionID uint64) error {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.TeacherID != actorID {
		return ErrUnauthorized
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.scheduler.Cancel(reminderKey(sessionID))
	s.scheduler.Cancel(autoDeleteKey(sessionID))
	s.clearEscalations(sessionID)

	return nil
}

// HandleParticipantJoined drives completion: once the scheduled time has
// passed and the learner shows up, the session completes and the teacher
// earns. A rejoin also cancels any pending auto-delete.
func (s *bookingService) HandleParticipantJoined(ctx context.Context, sessionID, userID uint64) {
	s.scheduler.Cancel(autoDeleteKey(sessionID))

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil || session == nil {
		return
	}

	isLearner := session.LearnerID != nil && *session.LearnerID == userID
	if !isLearner || session.Status != models.SessionStatusScheduled {
		return
	}
	if s.now().Before(session.DateTime) {
		return
	}

	if _, err := s.CompleteAndEarn(ctx, sessionID); err != nil {
		s.log.WithSessionID(sessionID).WithError(err).Warn("completion on join failed")
	}
}

// HandleParticipantLeft schedules the post-meeting cleanup: the session is
// removed a few minutes after a participant leaves the call view, unless a
// rejoin or an explicit action cancels the timer first.
func (s *bookingService) HandleParticipantLeft(ctx context.Context, sessionID, userID uint64) {
	s.scheduler.Schedule(autoDeleteKey(sessionID), s.timers.AutoDeleteDelay, func() {
		if err := s.sessionRepo.Delete(context.Background(), sessionID); err != nil {
			if !errors.Is(err, repository.ErrSessionNotFound) {
				s.log.WithSessionID(sessionID).WithError(err).Warn("post-meeting cleanup failed")
			}
			return
		}
		s.scheduler.Cancel(reminderKey(sessionID))
		s.clearEscalations(sessionID)
		s.log.WithSessionID(sessionID).Info("session removed by post-meeting cleanup")
	})
}

// clearEscalations drops the session's strike counters. The engine is an
// optional collaborator; without it, counters die with the process.
func (s *bookingService) clearEscalations(sessionID uint64) {
	if s.escalations != nil {
		s.escalations.ClearSession(sessionID)
	}
}

func (s *bookingService) fetch(ctx context.Context, sessionID uint64) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// dispatchConfirmations emails both parties. Delivery is fire-and-forget: a
// failed email never fails the booking.
func (s *bookingService) dispatchConfirmations(session *models.Session, learnerID uint64) {
	sessionCopy := *session
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, userID := range []uint64{sessionCopy.TeacherID, learnerID} {
			user, err := s.userRepo.FindByID(ctx, userID)
			if err != nil || user == nil {
				s.log.WithUserID(userID).Warn("confirmation email skipped: user lookup failed")
				continue
			}
			if err := s.email.SendBookingConfirmation(ctx, user.Email, &sessionCopy); err != nil {
				s.log.WithUserID(userID).WithError(err).Warn("confirmation email failed")
			}
		}
	}()
}

// scheduleReminder queues the pre-session reminder. Sessions starting inside
// the lead window get no reminder.
func (s *bookingService) scheduleReminder(session *models.Session, learnerID uint64) {
	delay := time.Until(session.DateTime.Add(-s.timers.ReminderLead))
	if delay <= 0 {
		return
	}

	sessionCopy := *session
	s.scheduler.Schedule(reminderKey(session.ID), delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, userID := range []uint64{sessionCopy.TeacherID, learnerID} {
			user, err := s.userRepo.FindByID(ctx, userID)
			if err != nil || user == nil {
				continue
			}
			if err := s.email.SendSessionReminder(ctx, user.Email, &sessionCopy); err != nil {
				s.log.WithUserID(userID).WithError(err).Warn("reminder email failed")
			}
		}
	})
}

func reminderKey(sessionID uint64) string {
	return fmt.Sprintf("reminder-%d", sessionID)
}

func autoDeleteKey(sessionID uint64) string {
	return fmt.Sprintf("autodelete-%d", sessionID)
}
