package service

import (
	"context"
	"fmt"

	"skillswap/backend/internal/models"
)

// EmailService renders the platform's transactional emails and hands them to
// the channel.
type EmailService interface {
	SendBookingConfirmation(ctx context.Context, to string, session *models.Session) error
	SendSessionReminder(ctx context.Context, to string, session *models.Session) error
}

type emailService struct {
	channel EmailChannel
}

// NewEmailService creates a default email service backed by the provided channel.
func NewEmailService(channel EmailChannel) EmailService {
	return &emailService{
		channel: channel,
	}
}

func (s *emailService) SendBookingConfirmation(ctx context.Context, to string, session *models.Session) error {
	payload := models.EmailPayload{
		To:      to,
		Subject: fmt.Sprintf("Booking confirmed: %s", session.Skill),
		Body: fmt.Sprintf(
			"Your %s session on %s is confirmed. %d credits were reserved for this booking.",
			session.Skill,
			session.DateTime.Format("Mon, 02 Jan 2006 15:04"),
			session.CreditsUsed,
		),
	}

	_, err := s.channel.SendEmail(ctx, payload)
	return err
}

func (s *emailService) SendSessionReminder(ctx context.Context, to string, session *models.Session) error {
	payload := models.EmailPayload{
		To:      to,
		Subject: fmt.Sprintf("Starting soon: %s", session.Skill),
		Body: fmt.Sprintf(
			"Your %s session starts at %s. Join the call from your dashboard.",
			session.Skill,
			session.DateTime.Format("15:04"),
		),
	}

	_, err := s.channel.SendEmail(ctx, payload)
	return err
}
