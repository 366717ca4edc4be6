package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/internal/dto"
	"github.com/edupreneurx/submissions-api/internal/emails"
	"github.com/edupreneurx/submissions-api/internal/models"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
	"github.com/edupreneurx/submissions-api/pkg/mailer"
)

type emailRenderer interface {
	Confirmation(data emails.ConfirmationData) (*emails.Email, error)
	StatusUpdate(data emails.StatusUpdateData) (*emails.Email, error)
	Digest(data emails.DigestData) (*emails.Email, error)
}

// EmailDispatcher renders an email for its kind and hands it to the sender.
type EmailDispatcher struct {
	renderer     emailRenderer
	sender       mailer.Sender
	validator    *validator.Validate
	logger       *zap.Logger
	adminAddress string
	now          func() time.Time
}

// NewEmailDispatcher constructs the dispatcher. adminAddress receives staff
// copies and the digest when a request names no recipients.
func NewEmailDispatcher(renderer emailRenderer, sender mailer.Sender, validate *validator.Validate, logger *zap.Logger, adminAddress string) *EmailDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmailDispatcher{
		renderer:     renderer,
		sender:       sender,
		validator:    validate,
		logger:       logger,
		adminAddress: adminAddress,
		now:          time.Now,
	}
}

// Dispatch renders and sends one email. On failure the returned response
// carries success=false and the error text alongside the typed error.
func (d *EmailDispatcher) Dispatch(ctx context.Context, req dto.EmailRequest) (*dto.EmailResponse, error) {
	if err := d.validator.Struct(req); err != nil {
		return dispatchFailure(appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email request"))
	}

	email, defaults, err := d.render(req.Type, req.Data)
	if err != nil {
		return dispatchFailure(err)
	}

	to := req.To
	if len(to) == 0 {
		to = defaults
	}
	to = compactAddresses(to)
	if len(to) == 0 {
		return dispatchFailure(appErrors.Clone(appErrors.ErrValidation, "email has no recipients"))
	}

	result, err := d.sender.Send(ctx, mailer.Message{To: to, Subject: email.Subject, HTML: email.HTML})
	if err != nil {
		d.logger.Sugar().Warnw("email dispatch failed", "type", req.Type, "recipients", len(to), "error", err)
		return dispatchFailure(err)
	}

	d.logger.Sugar().Infow("email dispatched", "type", req.Type, "recipients", len(to), "message_id", result.MessageID)
	return &dto.EmailResponse{Success: true, MessageID: result.MessageID}, nil
}

func (d *EmailDispatcher) render(kind models.EmailKind, raw json.RawMessage) (*emails.Email, []string, error) {
	switch kind {
	case models.EmailConfirmation:
		var data emails.ConfirmationData
		if err := decodeEmailData(raw, &data); err != nil {
			return nil, nil, err
		}
		to := []string{data.Email}
		if data.StaffCopy {
			to = []string{d.adminAddress}
		}
		email, err := d.renderer.Confirmation(data)
		return wrapRender(email, to, err)
	case models.EmailStatusUpdate:
		var data emails.StatusUpdateData
		if err := decodeEmailData(raw, &data); err != nil {
			return nil, nil, err
		}
		email, err := d.renderer.StatusUpdate(data)
		return wrapRender(email, []string{data.Email}, err)
	case models.EmailAdminDigest:
		var data emails.DigestData
		if err := decodeEmailData(raw, &data); err != nil {
			return nil, nil, err
		}
		if data.DigestDate.IsZero() {
			data.DigestDate = d.now().UTC()
		}
		email, err := d.renderer.Digest(data)
		return wrapRender(email, []string{d.adminAddress}, err)
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown email type")
	}
}

func decodeEmailData(raw json.RawMessage, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email data")
	}
	return nil
}

func wrapRender(email *emails.Email, to []string, err error) (*emails.Email, []string, error) {
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render email")
	}
	return email, to, nil
}

func dispatchFailure(err error) (*dto.EmailResponse, error) {
	return &dto.EmailResponse{Success: false, Error: appErrors.FromError(err).Message}, err
}

func compactAddresses(in []string) []string {
	out := make([]string, 0, len(in))
	for _, addr := range in {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
