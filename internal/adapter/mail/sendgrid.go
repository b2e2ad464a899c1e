package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	ucNotification "bonafide-backend/internal/usecase/notification"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

type SendGrid struct {
	key  string
	from *sgmail.Email
	log  *zap.Logger
	// replaced in tests
	api func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

var _ ucNotification.Mailer = (*SendGrid)(nil)

func NewSendGrid(key, fromName, fromAddress string, log *zap.Logger) *SendGrid {
	return &SendGrid{
		key:  key,
		from: sgmail.NewEmail(fromName, fromAddress),
		log:  log,
		api:  sendgrid.MakeRequestWithContext,
	}
}

func (s *SendGrid) prepare(m ucNotification.Email) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.Subject
	p.AddTos(sgmail.NewEmail(m.ToName, m.ToAddress))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(s.from)
	v3.AddPersonalizations(p)
	v3.AddContent(
		sgmail.NewContent("text/plain", m.Text),
		sgmail.NewContent("text/html", m.HTML),
	)
	return v3
}

func (s *SendGrid) Send(ctx context.Context, m ucNotification.Email) error {
	req := sendgrid.GetRequest(s.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(m))

	res, err := s.api(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	s.log.Debug("email sent", zap.String("to", m.ToAddress), zap.String("subject", m.Subject))
	return nil
}
