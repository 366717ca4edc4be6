package mailer

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ConsoleSender logs messages instead of delivering them and keeps a copy of
// everything it was asked to send.
type ConsoleSender struct {
	from   From
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

// NewConsole builds a development sender.
func NewConsole(from From, logger *zap.Logger) *ConsoleSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSender{from: from, logger: logger}
}

func (c *ConsoleSender) Send(_ context.Context, msg Message) (Result, error) {
	if err := validate(msg); err != nil {
		return Result{}, err
	}

	id := consoleMessageID()
	c.logger.Info("email",
		zap.String("message_id", id),
		zap.String("from", c.from.Address),
		zap.String("to", strings.Join(msg.To, ", ")),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)

	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()

	return Result{MessageID: id}, nil
}

// Sent returns a copy of the messages handled so far.
func (c *ConsoleSender) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}
