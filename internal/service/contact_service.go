package service

import (
	"context"
	"strings"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/notify"

	"go.uber.org/zap"
)

// ContactService forwards the public contact form to the site owner.
type ContactService struct {
	mailer notify.Sender
	owner  string
}

func NewContactService(mailer notify.Sender, owner string) *ContactService {
	return &ContactService{mailer: mailer, owner: owner}
}

func (s *ContactService) Send(ctx context.Context, req dto.ContactRequest) error {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Message)
	if name == "" || email == "" || subject == "" || body == "" {
		return apperr.Validation(msgAllFields)
	}

	err := s.mailer.Send(ctx, notify.Message{
		Kind:    notify.KindContact,
		To:      s.owner,
		ReplyTo: email,
		Contact: &notify.ContactForm{Name: name, Email: email, Subject: subject, Body: body},
	})
	if err != nil {
		logger.FromCtx(ctx).Error("contact email failed", zap.String("from", email), zap.Error(err))
		return apperr.Wrap(apperr.CodeInternal, err, "Failed to send message. Please try again later.")
	}
	return nil
}
