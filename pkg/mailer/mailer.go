// Package mailer hands rendered emails to a delivery provider.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edupreneurx/submissions-api/pkg/config"
	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
)

// Message is a rendered, ready-to-send email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Result describes an accepted message.
type Result struct {
	MessageID string
}

// Sender delivers a message. Implementations return appErrors.ErrConfiguration
// when they cannot send at all and appErrors.ErrDispatch when the provider refuses.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// From identifies the sending mailbox.
type From struct {
	Name    string
	Address string
}

// New picks a Sender for the configured driver.
func New(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	from := From{Name: cfg.FromName, Address: cfg.FromAddress}
	switch cfg.Driver {
	case config.MailDriverConsole:
		return NewConsole(from, logger), nil
	case config.MailDriverSendGrid, "":
		return NewSendGrid(SendGridConfig{
			APIKey:  cfg.SendGridAPIKey,
			Host:    cfg.SendGridHost,
			From:    from,
			Timeout: cfg.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

func validate(msg Message) error {
	if len(msg.To) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "email has no recipients")
	}
	for _, to := range msg.To {
		if strings.TrimSpace(to) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "email recipient is blank")
		}
	}
	if msg.Subject == "" || msg.HTML == "" {
		return appErrors.Clone(appErrors.ErrValidation, "email subject and body are required")
	}
	return nil
}

func consoleMessageID() string {
	return fmt.Sprintf("console-%d", time.Now().UnixNano())
}
