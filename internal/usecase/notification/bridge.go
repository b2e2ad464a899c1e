package notification

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bonafide-backend/internal/domain/certificate"
	domainNotification "bonafide-backend/internal/domain/notification"
	"bonafide-backend/internal/domain/profile"
	"bonafide-backend/internal/domain/uow"
	"bonafide-backend/internal/domain/workflow"
)

// Bridge turns committed transitions into in-app notifications, emails and
// change signals. Record runs inside the transition's transaction; Dispatch
// runs after commit and never fails the transition.
type Bridge struct {
	profiles profile.Repository
	mailer   Mailer
	pub      Publisher
	baseURL  string
	log      *zap.Logger
}

func NewBridge(profiles profile.Repository, mailer Mailer, pub Publisher, baseURL string, log *zap.Logger) *Bridge {
	return &Bridge{
		profiles: profiles,
		mailer:   mailer,
		pub:      pub,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
	}
}

// Link is the in-app path of a request.
func Link(requestID string) string { return "/certificate/" + requestID }

// TemplateFor names the email template for ev. Revert never selects one.
func TemplateFor(ev workflow.Event) (string, bool) {
	if ev.Action == workflow.ActionRevert || ev.Deleted {
		return "", false
	}
	if _, ok := emailTemplates[ev.NewStatus]; !ok {
		return "", false
	}
	return string(ev.NewStatus), true
}

func (b *Bridge) Record(ctx context.Context, r uow.Repos, ev workflow.Event) error {
	if _, ok := TemplateFor(ev); !ok {
		return nil
	}
	msg, ok := inAppMessage(ev.NewStatus, ev.RejectionReason)
	if !ok {
		return nil
	}
	link := Link(ev.RequestID)
	return r.Notifications.Create(ctx, &domainNotification.Notification{
		UserID:  ev.OwnerID,
		Message: msg,
		Link:    &link,
	})
}

func (b *Bridge) Dispatch(ctx context.Context, ev workflow.Event) {
	if ev.Action == workflow.ActionRevert {
		b.log.Warn("request reverted; owner not notified",
			zap.String("request_id", ev.RequestID),
			zap.String("actor_id", ev.ActorID))
	}
	if name, ok := TemplateFor(ev); ok && b.mailer != nil {
		if err := b.email(ctx, name, ev); err != nil {
			b.log.Error("status email failed",
				zap.String("request_id", ev.RequestID),
				zap.String("template", name),
				zap.Error(err))
		}
	}
	b.Changed(ctx, ev.Change())
}

// Changed publishes an invalidation signal. Failures are logged only.
func (b *Bridge) Changed(ctx context.Context, c workflow.Change) {
	if b.pub == nil {
		return
	}
	if err := b.pub.Publish(ctx, c); err != nil {
		b.log.Error("publish change failed", zap.String("request_id", c.RequestID), zap.Error(err))
	}
}

func (b *Bridge) email(ctx context.Context, name string, ev workflow.Event) error {
	owner, err := b.profiles.GetByID(ctx, ev.OwnerID)
	if err != nil {
		return err
	}
	if owner.Email == "" {
		b.log.Debug("owner has no email", zap.String("owner_id", owner.ID))
		return nil
	}
	tpl := emailTemplates[certificate.Status(name)]
	text, html, err := tpl.render(mailData{
		StudentName:     owner.FullName(),
		RequestID:       ev.RequestID,
		Link:            b.baseURL + Link(ev.RequestID),
		RejectionReason: ev.RejectionReason,
	})
	if err != nil {
		return err
	}
	return b.mailer.Send(ctx, Email{
		ToAddress: owner.Email,
		ToName:    owner.FullName(),
		Subject:   tpl.subject,
		Text:      text,
		HTML:      html,
	})
}
