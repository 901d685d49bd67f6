package service

import (
	"context"
	"log/slog"
	"time"

	"yamdb/internal/confirm"
	"yamdb/internal/http-api/models"
	"yamdb/internal/mailer"
)

const confirmationSubject = "YaMDb. Confirmation code"

// ConfirmationSender mails a fresh confirmation code. Delivery failures are
// logged and never fail the caller.
type ConfirmationSender struct {
	tokens  *confirm.Generator
	mailer  mailer.Mailer
	logger  *slog.Logger
	timeout time.Duration
}

func NewConfirmationSender(tokens *confirm.Generator, m mailer.Mailer, logger *slog.Logger) *ConfirmationSender {
	return &ConfirmationSender{tokens: tokens, mailer: m, logger: logger, timeout: 10 * time.Second}
}

func (s *ConfirmationSender) Send(ctx context.Context, user *models.User) {
	if s == nil {
		return
	}
	code := s.tokens.MakeToken(user)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.mailer.Send(ctx, user.Email, confirmationSubject, confirmationBody(code)); err != nil {
		s.logger.Warn("confirmation mail not delivered", "user_id", user.ID, "error", err)
		return
	}
	s.logger.Debug("confirmation mail sent", "user_id", user.ID)
}

func confirmationBody(code string) string {
	return "Your confirmation code: " + code
}
