package services

import (
	"context"
	"strings"

	"djbooks_back_end/internal/models"
	"djbooks_back_end/internal/notify"
)

const msgRequestSent = "Recibimos tu solicitud, te avisaremos cuando tengamos el libro"

type BookRequestMailer interface {
	SendBookRequest(ctx context.Context, req models.BookRequest) error
}

// BookRequests forwards "find me this book" forms to the store inbox.
type BookRequests struct {
	mailer BookRequestMailer
}

func NewBookRequests(mailer BookRequestMailer) *BookRequests {
	return &BookRequests{mailer: mailer}
}

func (r *BookRequests) Submit(ctx context.Context, n notify.Notifier, req models.BookRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Email = strings.TrimSpace(req.Email)
	if err := models.Validate(req); err != nil {
		return err
	}
	if err := r.mailer.SendBookRequest(ctx, req); err != nil {
		return err
	}
	n.Notify(notify.Success, msgRequestSent)
	return nil
}
