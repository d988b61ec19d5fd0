package service

import (
	"context"
	"fmt"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
)

// NotificationService serves the per-user message feed, newest first.
type NotificationService interface {
	List(ctx context.Context, userID uint64, page, perPage int32) ([]models.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uint64) error
	MarkAllAsRead(ctx context.Context, userID uint64) error
	CountUnread(ctx context.Context, userID uint64) (int64, error)
}

type notificationService struct {
	notifRepo repository.NotificationRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notifRepo: notifRepo}
}

func (s *notificationService) List(ctx context.Context, userID uint64, page, perPage int32) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	notifications, total, err := s.notifRepo.List(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID uint64) error {
	return s.notifRepo.MarkAsRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uint64) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}
