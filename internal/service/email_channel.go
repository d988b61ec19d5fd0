package service

import (
	"context"

	"github.com/google/uuid"

	"skillswap/backend/internal/models"
	"skillswap/backend/pkg/logger"
)

// EmailChannel abstracts the outbound email collaborator. Delivery is
// fire-and-forget from the caller's perspective; failures are logged, never
// propagated into the primary operation.
type EmailChannel interface {
	SendEmail(ctx context.Context, payload models.EmailPayload) (string, error)
}

type logEmailChannel struct {
	log *logger.Logger
}

// NewLogEmailChannel returns the default channel used when no real dispatcher
// is configured: it records the send and reports success.
func NewLogEmailChannel(log *logger.Logger) EmailChannel {
	return &logEmailChannel{log: log}
}

func (c *logEmailChannel) SendEmail(ctx context.Context, payload models.EmailPayload) (string, error) {
	messageID := uuid.New().String()
	c.log.WithField("to", payload.To).
		WithField("subject", payload.Subject).
		WithField("message_id", messageID).
		Info("email dispatched")
	return messageID, nil
}
