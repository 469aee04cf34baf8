package notifications

import (
	"context"
	"fmt"

	"github.com/orderhub/orderhub-backend/pkg/logger"
)

// Sender delivers transactional notifications to users. The current
// implementation logs them; an SMTP or provider-backed sender can replace
// it behind the same interface.
type Sender interface {
	RegistrationConfirm(ctx context.Context, email string, userID int64, token string) error
	OrderPlaced(ctx context.Context, email string, orderID int64) error
	OrderStateChanged(ctx context.Context, email string, orderID int64, state string) error
}

// LogSender writes notifications to the structured log.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a log-backed notification sender.
func NewLogSender(logg *logger.Logger) (*LogSender, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &LogSender{logg: logg}, nil
}

func (s *LogSender) RegistrationConfirm(ctx context.Context, email string, userID int64, token string) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification": "registration_confirm",
		"email":        email,
		"user_id":      userID,
	})
	s.logg.Info(ctx, "confirmation token issued: "+token)
	return nil
}

func (s *LogSender) OrderPlaced(ctx context.Context, email string, orderID int64) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification": "order_placed",
		"email":        email,
		"order_id":     orderID,
	})
	s.logg.Info(ctx, "order placed notification")
	return nil
}

func (s *LogSender) OrderStateChanged(ctx context.Context, email string, orderID int64, state string) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification": "order_state_changed",
		"email":        email,
		"order_id":     orderID,
		"state":        state,
	})
	s.logg.Info(ctx, "order state notification")
	return nil
}
