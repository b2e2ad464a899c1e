package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"bonafide-backend/internal/domain/certificate"
)

type mailData struct {
	StudentName     string
	RequestID       string
	Link            string
	RejectionReason string
}

type emailTemplate struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

const layout = `<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Dear {{.StudentName}},</p>
{{template "body" .}}
<p><a href="{{.Link}}">View your request</a></p>
</body></html>`

func newTemplate(name, subject, text, html string) emailTemplate {
	h := htmltemplate.Must(htmltemplate.New(name).Parse(layout))
	htmltemplate.Must(h.New("body").Parse(html))
	return emailTemplate{
		subject: subject,
		text:    texttemplate.Must(texttemplate.New(name).Parse("Dear {{.StudentName}},\n\n" + text + "\n\nView your request: {{.Link}}\n")),
		html:    h,
	}
}

// one template per status a student is told about
var emailTemplates = map[certificate.Status]emailTemplate{
	certificate.StatusApprovedByTutor: newTemplate("approved_by_tutor",
		"Your bonafide request was approved by your tutor",
		"Your bonafide certificate request {{.RequestID}} has been approved by your tutor and forwarded to the HOD.",
		`<p>Your bonafide certificate request <b>{{.RequestID}}</b> has been approved by your tutor and forwarded to the HOD.</p>`),
	certificate.StatusRejectedByTutor: newTemplate("rejected_by_tutor",
		"Your bonafide request was rejected by your tutor",
		"Your bonafide certificate request {{.RequestID}} was rejected by your tutor.\nReason: {{.RejectionReason}}\nYou can edit and resubmit it.",
		`<p>Your bonafide certificate request <b>{{.RequestID}}</b> was rejected by your tutor.</p><p>Reason: {{.RejectionReason}}</p><p>You can edit and resubmit it.</p>`),
	certificate.StatusApprovedByHOD: newTemplate("approved_by_hod",
		"Your bonafide request was approved by the HOD",
		"Your bonafide certificate request {{.RequestID}} has been approved by the HOD and forwarded to the office.",
		`<p>Your bonafide certificate request <b>{{.RequestID}}</b> has been approved by the HOD and forwarded to the office.</p>`),
	certificate.StatusRejectedByHOD: newTemplate("rejected_by_hod",
		"Your bonafide request was rejected by the HOD",
		"Your bonafide certificate request {{.RequestID}} was rejected by the HOD.\nReason: {{.RejectionReason}}\nYou can edit and resubmit it.",
		`<p>Your bonafide certificate request <b>{{.RequestID}}</b> was rejected by the HOD.</p><p>Reason: {{.RejectionReason}}</p><p>You can edit and resubmit it.</p>`),
	certificate.StatusCompleted: newTemplate("completed",
		"Your bonafide certificate is ready",
		"Your bonafide certificate for request {{.RequestID}} is ready. Please collect it from the office.",
		`<p>Your bonafide certificate for request <b>{{.RequestID}}</b> is ready. Please collect it from the office.</p>`),
}

func (t emailTemplate) render(d mailData) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := t.text.Execute(&tb, d); err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}
	if err := t.html.Execute(&hb, d); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	return tb.String(), hb.String(), nil
}

func inAppMessage(status certificate.Status, rejection string) (string, bool) {
	switch status {
	case certificate.StatusApprovedByTutor:
		return "Your bonafide certificate request has been approved by your tutor and forwarded to the HOD.", true
	case certificate.StatusRejectedByTutor:
		return "Your bonafide certificate request was rejected by your tutor. Reason: " + rejection, true
	case certificate.StatusApprovedByHOD:
		return "Your bonafide certificate request has been approved by the HOD and forwarded to the office.", true
	case certificate.StatusRejectedByHOD:
		return "Your bonafide certificate request was rejected by the HOD. Reason: " + rejection, true
	case certificate.StatusCompleted:
		return "Your bonafide certificate is ready for collection.", true
	}
	return "", false
}
