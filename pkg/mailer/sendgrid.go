package mailer

import (
	"context"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	appErrors "github.com/edupreneurx/submissions-api/pkg/errors"
)

const (
	defaultSendGridHost = "https://api.sendgrid.com"
	sendEndpoint        = "/v3/mail/send"
	messageIDHeader     = "X-Message-Id"
)

// SendGridConfig configures the SendGrid v3 mail-send driver.
type SendGridConfig struct {
	APIKey  string
	Host    string
	From    From
	Timeout time.Duration
}

// SendGridSender posts messages to the SendGrid v3 API.
type SendGridSender struct {
	key    string
	host   string
	from   *sgmail.Email
	client *rest.Client
	logger *zap.Logger
}

// NewSendGrid builds the driver. A zero timeout defaults to 10s.
func NewSendGrid(cfg SendGridConfig, logger *zap.Logger) *SendGridSender {
	if cfg.Host == "" {
		cfg.Host = defaultSendGridHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridSender{
		key:    cfg.APIKey,
		host:   cfg.Host,
		from:   sgmail.NewEmail(cfg.From.Name, cfg.From.Address),
		client: &rest.Client{HTTPClient: &http.Client{Timeout: cfg.Timeout}},
		logger: logger,
	}
}

// Send delivers msg. It fails fast with ErrConfiguration when no API key is set.
func (s *SendGridSender) Send(ctx context.Context, msg Message) (Result, error) {
	if s.key == "" {
		return Result{}, appErrors.Clone(appErrors.ErrConfiguration, "SENDGRID_API_KEY is not set")
	}
	if err := validate(msg); err != nil {
		return Result{}, err
	}

	req := sendgrid.GetRequest(s.key, sendEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := s.client.SendWithContext(ctx, req)
	if err != nil {
		return Result{}, appErrors.Wrap(err, appErrors.ErrDispatch.Code, appErrors.ErrDispatch.Status, "sendgrid request failed")
	}
	if res.StatusCode >= http.StatusBadRequest {
		s.logger.Sugar().Warnw("sendgrid rejected message", "status", res.StatusCode, "body", res.Body, "subject", msg.Subject)
		return Result{}, appErrors.Clone(appErrors.ErrDispatch, "sendgrid rejected the message")
	}

	return Result{MessageID: headerValue(res.Headers, messageIDHeader)}, nil
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.Subject = msg.Subject
	m.AddPersonalizations(p)
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))

	return m
}

func headerValue(headers map[string][]string, key string) string {
	if values := http.Header(headers).Values(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
