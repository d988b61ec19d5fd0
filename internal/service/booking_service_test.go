package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/logger"
)

func bookedSession(sessionID, teacherID, learnerID uint64, credits int64) *models.Session {
	lid := learnerID
	return &models.Session{
		ID:          sessionID,
		TeacherID:   teacherID,
		LearnerID:   &lid,
		Skill:       "Go Programming",
		CreditsUsed: credits,
		DateTime:    time.Now().Add(2 * time.Hour),
		Status:      models.SessionStatusScheduled,
		Type:        models.SessionTypeBooking,
		Subscribed:  true,
	}
}

func newTestBookingService(
	sessionRepo *mockSessionRepository,
	userRepo *mockUserRepository,
	notifRepo *mockNotificationRepository,
	ledger *mockLedgerService,
	email *mockEmailService,
	scheduler *mockScheduler,
) BookingService {
	return NewBookingService(
		sessionRepo, userRepo, notifRepo, ledger, email, scheduler, nil,
		BookingTimers{ReminderLead: 10 * time.Minute, AutoDeleteDelay: 5 * time.Minute},
		logger.NewLogger("test"),
	)
}

type mockEscalationCounters struct {
	mu      sync.Mutex
	cleared []uint64
}

func (m *mockEscalationCounters) ClearSession(sessionID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, sessionID)
}

func newTestBookingServiceWithEscalations(
	sessionRepo *mockSessionRepository,
	ledger *mockLedgerService,
	scheduler *mockScheduler,
	escalations *mockEscalationCounters,
) BookingService {
	return NewBookingService(
		sessionRepo, &mockUserRepository{}, &mockNotificationRepository{},
		ledger, &mockEmailService{}, scheduler, escalations,
		BookingTimers{ReminderLead: 10 * time.Minute, AutoDeleteDelay: 5 * time.Minute},
		logger.NewLogger("test"),
	)
}

func TestBookingService_BookSession(t *testing.T) {
	ctx := context.Background()

	t.Run("ClaimsDebitsAndNotifies", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)
		var debited int64

		sessionRepo := &mockSessionRepository{}
		sessionRepo.claimFunc = func(ctx context.Context, sessionID, learnerID uint64) error {
			assert.Equal(t, uint64(10), sessionID)
			assert.Equal(t, uint64(2), learnerID)
			return nil
		}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}

		ledger := &mockLedgerService{}
		ledger.debitFunc = func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
			assert.Equal(t, uint64(2), userID)
			debited = amount
			return &models.Balance{TotalCredits: 200}, nil
		}

		userRepo := &mockUserRepository{}
		userRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.User, error) {
			return &models.User{ID: id, Email: "user@example.com"}, nil
		}

		notifRepo := &mockNotificationRepository{}
		email := &mockEmailService{}
		scheduler := newMockScheduler()

		svc := newTestBookingService(sessionRepo, userRepo, notifRepo, ledger, email, scheduler)

		result, err := svc.BookSession(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(100), debited)
		assert.True(t, result.Booked())
		assert.Len(t, notifRepo.appended, 1)
		assert.Contains(t, scheduler.scheduled, "reminder-10")

		// Confirmations are dispatched off the request path.
		assert.Eventually(t, func() bool {
			email.mu.Lock()
			defer email.mu.Unlock()
			return len(email.confirmations) == 2
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("ReleasesClaimWhenDebitFails", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)
		released := false

		sessionRepo := &mockSessionRepository{}
		sessionRepo.claimFunc = func(ctx context.Context, sessionID, learnerID uint64) error { return nil }
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.releaseClaimFunc = func(ctx context.Context, sessionID, learnerID uint64) error {
			assert.Equal(t, uint64(10), sessionID)
			assert.Equal(t, uint64(2), learnerID)
			released = true
			return nil
		}

		ledger := &mockLedgerService{}
		ledger.debitFunc = func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
			return nil, ErrInsufficientBalance
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, ledger, &mockEmailService{}, newMockScheduler())

		_, err := svc.BookSession(ctx, 2, 10)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.True(t, released, "failed debit must release the claim")
	})

	t.Run("AlreadyBooked", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{}
		sessionRepo.claimFunc = func(ctx context.Context, sessionID, learnerID uint64) error {
			return repository.ErrAlreadyBooked
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, newMockScheduler())

		_, err := svc.BookSession(ctx, 3, 10)
		assert.ErrorIs(t, err, ErrAlreadyBooked)
	})

	t.Run("SameLearnerIsIdempotent", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.claimFunc = func(ctx context.Context, sessionID, learnerID uint64) error {
			return repository.ErrSameLearner
		}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}

		ledger := &mockLedgerService{}
		ledger.debitFunc = func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
			t.Fatal("resubscribe must not debit again")
			return nil, nil
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, ledger, &mockEmailService{}, newMockScheduler())

		result, err := svc.BookSession(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, session.ID, result.ID)
	})

	t.Run("FreeSessionSkipsLedger", func(t *testing.T) {
		session := bookedSession(11, 1, 2, 0)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.claimFunc = func(ctx context.Context, sessionID, learnerID uint64) error { return nil }
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}

		userRepo := &mockUserRepository{}
		userRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.User, error) {
			return &models.User{ID: id, Email: "user@example.com"}, nil
		}

		svc := newTestBookingService(sessionRepo, userRepo, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, newMockScheduler())

		_, err := svc.BookSession(ctx, 2, 11)
		require.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{}
		sessionRepo.claimFunc = func(ctx context.Context, sessionID, learnerID uint64) error {
			return repository.ErrSessionNotFound
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, newMockScheduler())

		_, err := svc.BookSession(ctx, 2, 99)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestBookingService_CompleteAndEarn(t *testing.T) {
	ctx := context.Background()

	t.Run("CreditsTeacher", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)
		var earned int64

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.markCompletedFunc = func(ctx context.Context, id uint64) error { return nil }

		ledger := &mockLedgerService{}
		ledger.earnFunc = func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
			assert.Equal(t, uint64(1), userID)
			earned = amount
			return &models.Balance{CreditsEarned: 100}, nil
		}

		scheduler := newMockScheduler()
		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, ledger, &mockEmailService{}, scheduler)

		result, err := svc.CompleteAndEarn(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(100), earned)
		assert.Equal(t, models.SessionStatusCompleted, result.Status)
		assert.Contains(t, scheduler.cancelled, "reminder-10")
	})

	t.Run("RejectsUnsubscribedSession", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)
		session.Unsubscribed = true

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, newMockScheduler())

		_, err := svc.CompleteAndEarn(ctx, 10)
		assert.ErrorIs(t, err, ErrNotBillable)
	})

	t.Run("RejectsNeverBookedOffer", func(t *testing.T) {
		session := &models.Session{
			ID:        10,
			TeacherID: 1,
			Status:    models.SessionStatusScheduled,
			Type:      models.SessionTypeService,
		}

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, newMockScheduler())

		_, err := svc.CompleteAndEarn(ctx, 10)
		assert.ErrorIs(t, err, ErrNotBillable)
	})
}

func TestBookingService_DeleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerOnly", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, newMockScheduler())

		err := svc.DeleteSession(ctx, 2, 10)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("CancelsTimers", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.deleteFunc = func(ctx context.Context, id uint64) error { return nil }

		scheduler := newMockScheduler()
		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, scheduler)

		err := svc.DeleteSession(ctx, 1, 10)
		require.NoError(t, err)
		assert.Contains(t, scheduler.cancelled, "reminder-10")
		assert.Contains(t, scheduler.cancelled, "autodelete-10")
	})
}

func TestBookingService_ClearsEscalationCounters(t *testing.T) {
	ctx := context.Background()

	t.Run("OnCompletion", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.markCompletedFunc = func(ctx context.Context, id uint64) error { return nil }

		ledger := &mockLedgerService{}
		ledger.earnFunc = func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
			return &models.Balance{}, nil
		}

		escalations := &mockEscalationCounters{}
		svc := newTestBookingServiceWithEscalations(sessionRepo, ledger, newMockScheduler(), escalations)

		_, err := svc.CompleteAndEarn(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []uint64{10}, escalations.cleared)
	})

	t.Run("OnDeletion", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.deleteFunc = func(ctx context.Context, id uint64) error { return nil }

		escalations := &mockEscalationCounters{}
		svc := newTestBookingServiceWithEscalations(sessionRepo, &mockLedgerService{}, newMockScheduler(), escalations)

		err := svc.DeleteSession(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, []uint64{10}, escalations.cleared)
	})

	t.Run("NotOnFailedDeletion", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.deleteFunc = func(ctx context.Context, id uint64) error {
			return repository.ErrSessionNotFound
		}

		escalations := &mockEscalationCounters{}
		svc := newTestBookingServiceWithEscalations(sessionRepo, &mockLedgerService{}, newMockScheduler(), escalations)

		err := svc.DeleteSession(ctx, 1, 10)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Empty(t, escalations.cleared)
	})
}

func TestBookingService_Presence(t *testing.T) {
	ctx := context.Background()

	t.Run("JoinAfterStartCompletes", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)
		session.DateTime = time.Now().Add(-30 * time.Minute)

		completed := false
		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.markCompletedFunc = func(ctx context.Context, id uint64) error {
			completed = true
			return nil
		}

		ledger := &mockLedgerService{}
		ledger.earnFunc = func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
			return &models.Balance{}, nil
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, ledger, &mockEmailService{}, newMockScheduler())

		svc.HandleParticipantJoined(ctx, 10, 2)
		assert.True(t, completed)
	})

	t.Run("TeacherJoinDoesNotComplete", func(t *testing.T) {
		session := bookedSession(10, 1, 2, 100)
		session.DateTime = time.Now().Add(-30 * time.Minute)

		sessionRepo := &mockSessionRepository{}
		sessionRepo.findByIDFunc = func(ctx context.Context, id uint64) (*models.Session, error) {
			return session, nil
		}
		sessionRepo.markCompletedFunc = func(ctx context.Context, id uint64) error {
			t.Fatal("teacher join must not complete the session")
			return nil
		}

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, newMockScheduler())

		svc.HandleParticipantJoined(ctx, 10, 1)
	})

	t.Run("LeaveSchedulesCleanup", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{}
		scheduler := newMockScheduler()

		svc := newTestBookingService(sessionRepo, &mockUserRepository{}, &mockNotificationRepository{}, &mockLedgerService{}, &mockEmailService{}, scheduler)

		svc.HandleParticipantLeft(ctx, 10, 2)
		assert.Contains(t, scheduler.scheduled, "autodelete-10")
	})
}
