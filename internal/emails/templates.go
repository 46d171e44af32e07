// Package emails renders the HTML bodies sent to subscribers. Resend accepts
// raw HTML, so the bodies are plain html/template documents sharing one base
// layout.
package emails

import (
	"bytes"
	"html/template"
)

const baseLayout = `<!DOCTYPE html>
<html>
  <body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background-color: #f6f9fc; margin: 0; padding: 24px;">
    <table width="100%" cellpadding="0" cellspacing="0">
      <tr>
        <td align="center">
          <table width="480" cellpadding="0" cellspacing="0" style="background: #ffffff; border-radius: 8px; padding: 32px;">
            <tr><td>{{template "content" .}}</td></tr>
            <tr>
              <td style="padding-top: 24px; font-size: 12px; color: #8898aa;">
                You are receiving this email because you subscribed to status updates.
                {{if .UnsubscribeLink}}<a href="{{.UnsubscribeLink}}" style="color: #8898aa;">Unsubscribe</a>{{end}}
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`

var (
	verificationTmpl = mustParse(`{{define "content"}}
<h2 style="color: #32325d;">Verify your email address</h2>
<p style="color: #525f7f;">Click the button below to confirm your subscription to status updates.</p>
<a href="{{.VerificationLink}}" style="display: inline-block; background: #5469d4; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Verify email</a>
<p style="color: #8898aa; font-size: 13px;">This link expires in 15 minutes. If you did not request this, you can ignore this email.</p>
{{end}}`)

	subscriptionTmpl = mustParse(`{{define "content"}}
<h2 style="color: #32325d;">Subscription confirmed</h2>
<p style="color: #525f7f;">You will now receive email notifications whenever the status page is updated.</p>
{{end}}`)

	unsubscribeTmpl = mustParse(`{{define "content"}}
<h2 style="color: #32325d;">You have been unsubscribed</h2>
<p style="color: #525f7f;">You will no longer receive status notifications. You can resubscribe at any time from the status page.</p>
{{end}}`)

	notificationTmpl = mustParse(`{{define "content"}}
<h2 style="color: #32325d;">Status update</h2>
<p style="color: #525f7f;">A {{.EntityType}} was {{.Action}}:</p>
<table cellpadding="0" cellspacing="0" style="background: #f6f9fc; border-radius: 6px; padding: 16px; width: 100%;">
  <tr><td style="color: #32325d; font-weight: 600; padding: 16px 16px 4px;">{{.Title}}</td></tr>
  {{if .Status}}<tr><td style="padding: 0 16px 4px;"><span style="color: #ffffff; background: {{.StatusColor}}; border-radius: 4px; padding: 2px 8px; font-size: 12px;">{{.Status}}</span></td></tr>{{end}}
  {{if .Description}}<tr><td style="color: #525f7f; padding: 4px 16px 16px;">{{.Description}}</td></tr>{{end}}
</table>
{{end}}`)
)

func mustParse(content string) *template.Template {
	return template.Must(template.Must(template.New("email").Parse(baseLayout)).Parse(content))
}

type VerificationData struct {
	VerificationLink string
	UnsubscribeLink  string
}

type ConfirmationData struct {
	UnsubscribeLink string
}

type NotificationData struct {
	EntityType      string
	Action          string
	Title           string
	Description     string
	Status          string
	StatusColor     string
	UnsubscribeLink string
}

func RenderVerification(data VerificationData) (string, error) {
	return render(verificationTmpl, data)
}

func RenderSubscriptionConfirmed(data ConfirmationData) (string, error) {
	return render(subscriptionTmpl, data)
}

func RenderUnsubscribed() (string, error) {
	return render(unsubscribeTmpl, struct{ UnsubscribeLink string }{})
}

func RenderNotification(data NotificationData) (string, error) {
	return render(notificationTmpl, data)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// StatusColor maps a status value to the badge color used in notification
// emails.
func StatusColor(status string) string {
	switch status {
	case "OPERATIONAL", "RESOLVED", "COMPLETED":
		return "#2dce89"
	case "DEGRADED", "MONITORING", "IN_PROGRESS":
		return "#fb6340"
	case "PARTIAL_OUTAGE", "IDENTIFIED", "SCHEDULED":
		return "#f5a623"
	default:
		return "#f5365c"
	}
}
