package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"skillswap/backend/internal/models"
)

type mockSessionRepository struct {
	createFunc             func(ctx context.Context, session *models.Session) error
	findByIDFunc           func(ctx context.Context, id uint64) (*models.Session, error)
	claimFunc              func(ctx context.Context, sessionID, learnerID uint64) error
	releaseClaimFunc       func(ctx context.Context, sessionID, learnerID uint64) error
	markCompletedFunc      func(ctx context.Context, id uint64) error
	markCancelledFunc      func(ctx context.Context, id uint64) error
	deleteFunc             func(ctx context.Context, id uint64) error
	listByTeacherFunc      func(ctx context.Context, teacherID uint64) ([]*models.Session, error)
	listByLearnerFunc      func(ctx context.Context, learnerID uint64) ([]*models.Session, error)
	listTeachingBookedFunc func(ctx context.Context, teacherID uint64) ([]*models.Session, error)
	listOpenFunc           func(ctx context.Context, limit, offset int32) ([]*models.Session, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	return errors.New("not implemented")
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id uint64) (*models.Session, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepository) Claim(ctx context.Context, sessionID, learnerID uint64) error {
	if m.claimFunc != nil {
		return m.claimFunc(ctx, sessionID, learnerID)
	}
	return errors.New("not implemented")
}

func (m *mockSessionRepository) ReleaseClaim(ctx context.Context, sessionID, learnerID uint64) error {
	if m.releaseClaimFunc != nil {
		return m.releaseClaimFunc(ctx, sessionID, learnerID)
	}
	return errors.New("not implemented")
}

func (m *mockSessionRepository) MarkCompleted(ctx context.Context, id uint64) error {
	if m.markCompletedFunc != nil {
		return m.markCompletedFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockSessionRepository) MarkCancelled(ctx context.Context, id uint64) error {
	if m.markCancelledFunc != nil {
		return m.markCancelledFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockSessionRepository) Delete(ctx context.Context, id uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockSessionRepository) ListByTeacher(ctx context.Context, teacherID uint64) ([]*models.Session, error) {
	if m.listByTeacherFunc != nil {
		return m.listByTeacherFunc(ctx, teacherID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepository) ListByLearner(ctx context.Context, learnerID uint64) ([]*models.Session, error) {
	if m.listByLearnerFunc != nil {
		return m.listByLearnerFunc(ctx, learnerID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepository) ListTeachingBooked(ctx context.Context, teacherID uint64) ([]*models.Session, error) {
	if m.listTeachingBookedFunc != nil {
		return m.listTeachingBookedFunc(ctx, teacherID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepository) ListOpen(ctx context.Context, limit, offset int32) ([]*models.Session, error) {
	if m.listOpenFunc != nil {
		return m.listOpenFunc(ctx, limit, offset)
	}
	return nil, errors.New("not implemented")
}

type mockUserRepository struct {
	createWithWelcomeFunc func(ctx context.Context, user *models.User, welcomeMessage string) error
	findByIDFunc          func(ctx context.Context, id uint64) (*models.User, error)
	findByExternalIDFunc  func(ctx context.Context, externalID string) (*models.User, error)
	updateProfileFunc     func(ctx context.Context, id uint64, name, avatarURL string) error
	replaceSkillsFunc     func(ctx context.Context, userID uint64, skills []string) error
	listSkillsFunc        func(ctx context.Context, userID uint64) ([]string, error)
}

func (m *mockUserRepository) CreateWithWelcome(ctx context.Context, user *models.User, welcomeMessage string) error {
	if m.createWithWelcomeFunc != nil {
		return m.createWithWelcomeFunc(ctx, user, welcomeMessage)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if m.findByExternalIDFunc != nil {
		return m.findByExternalIDFunc(ctx, externalID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id uint64, name, avatarURL string) error {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, id, name, avatarURL)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) ReplaceSkills(ctx context.Context, userID uint64, skills []string) error {
	if m.replaceSkillsFunc != nil {
		return m.replaceSkillsFunc(ctx, userID, skills)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) ListSkills(ctx context.Context, userID uint64) ([]string, error) {
	if m.listSkillsFunc != nil {
		return m.listSkillsFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

type mockNotificationRepository struct {
	mu       sync.Mutex
	appended []string

	appendFunc        func(ctx context.Context, userID uint64, message, notifType string) error
	listFunc          func(ctx context.Context, userID uint64, limit, offset int32) ([]models.Notification, int64, error)
	markAsReadFunc    func(ctx context.Context, notificationID, userID uint64) error
	markAllAsReadFunc func(ctx context.Context, userID uint64) error
	countUnreadFunc   func(ctx context.Context, userID uint64) (int64, error)
}

func (m *mockNotificationRepository) Append(ctx context.Context, userID uint64, message, notifType string) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, userID, message, notifType)
	}
	m.mu.Lock()
	m.appended = append(m.appended, message)
	m.mu.Unlock()
	return nil
}

func (m *mockNotificationRepository) List(ctx context.Context, userID uint64, limit, offset int32) ([]models.Notification, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, limit, offset)
	}
	return nil, 0, errors.New("not implemented")
}

func (m *mockNotificationRepository) MarkAsRead(ctx context.Context, notificationID, userID uint64) error {
	if m.markAsReadFunc != nil {
		return m.markAsReadFunc(ctx, notificationID, userID)
	}
	return errors.New("not implemented")
}

func (m *mockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uint64) error {
	if m.markAllAsReadFunc != nil {
		return m.markAllAsReadFunc(ctx, userID)
	}
	return errors.New("not implemented")
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	if m.countUnreadFunc != nil {
		return m.countUnreadFunc(ctx, userID)
	}
	return 0, errors.New("not implemented")
}

type mockLedgerService struct {
	debitFunc  func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error)
	earnFunc   func(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error)
	redeemFunc func(ctx context.Context, userID uint64, creditsToRedeem int64) (*models.Balance, error)
	topUpFunc  func(ctx context.Context, userID uint64, amount int64, paymentRef string) (*models.Balance, error)
}

func (m *mockLedgerService) Debit(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
	if m.debitFunc != nil {
		return m.debitFunc(ctx, userID, amount, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerService) Earn(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
	if m.earnFunc != nil {
		return m.earnFunc(ctx, userID, amount, sessionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerService) RedeemForSkillCoin(ctx context.Context, userID uint64, creditsToRedeem int64) (*models.Balance, error) {
	if m.redeemFunc != nil {
		return m.redeemFunc(ctx, userID, creditsToRedeem)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerService) TopUp(ctx context.Context, userID uint64, amount int64, paymentRef string) (*models.Balance, error) {
	if m.topUpFunc != nil {
		return m.topUpFunc(ctx, userID, amount, paymentRef)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerService) GetStatement(ctx context.Context, userID uint64, page, perPage int32) ([]models.LedgerEntry, error) {
	return nil, errors.New("not implemented")
}

func (m *mockLedgerService) SkillCoinRate() int64 { return 1000 }

type mockEmailService struct {
	mu            sync.Mutex
	confirmations []string
	reminders     []string

	confirmationErr error
}

func (m *mockEmailService) SendBookingConfirmation(ctx context.Context, to string, session *models.Session) error {
	m.mu.Lock()
	m.confirmations = append(m.confirmations, to)
	m.mu.Unlock()
	return m.confirmationErr
}

func (m *mockEmailService) SendSessionReminder(ctx context.Context, to string, session *models.Session) error {
	m.mu.Lock()
	m.reminders = append(m.reminders, to)
	m.mu.Unlock()
	return nil
}

// mockScheduler records scheduled keys without running timers.
type mockScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Duration
	cancelled []string
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{scheduled: make(map[string]time.Duration)}
}

func (m *mockScheduler) Schedule(key string, delay time.Duration, task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled[key] = delay
}

func (m *mockScheduler) Cancel(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, key)
}

func (m *mockScheduler) Stop() {}
