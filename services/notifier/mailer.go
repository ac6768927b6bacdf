package notifier

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridMailer delivers notification email through the SendGrid API
type SendgridMailer struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Send renders the named template and delivers it to address, honoring ctx
func (m *SendgridMailer) Send(ctx context.Context, address, template string, data map[string]interface{}) error {
	subject, plain, html := renderTemplate(template, data)
	from := mail.NewEmail(m.FromName, m.FromEmail)
	to := mail.NewEmail(address, address)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(m.APIKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func renderTemplate(template string, data map[string]interface{}) (subject, plain, html string) {
	caseNumber := str(data["caseNumber"])
	caseTitle := str(data["caseTitle"])

	switch template {
	case "case-status-changed":
		subject = fmt.Sprintf("Case %s status update", caseNumber)
		plain = fmt.Sprintf("The status of case %s (%s) changed from %s to %s.",
			caseNumber, caseTitle, str(data["previousStatus"]), str(data["newStatus"]))
	case "hearing-scheduled":
		subject = fmt.Sprintf("Hearing scheduled for case %s", caseNumber)
		plain = fmt.Sprintf("A hearing for case %s (%s) has been scheduled on %s in %s. Purpose: %s.",
			caseNumber, caseTitle, str(data["hearingDate"]), str(data["courtRoom"]), str(data["purpose"]))
	case "hearing-updated":
		subject = fmt.Sprintf("Hearing update for case %s", caseNumber)
		plain = fmt.Sprintf("A hearing for case %s (%s) was updated, new status: %s.",
			caseNumber, caseTitle, str(data["status"]))
	case "hearing-reminder":
		subject = fmt.Sprintf("Hearing reminder for case %s", caseNumber)
		plain = fmt.Sprintf("Reminder: a hearing for case %s (%s) is scheduled on %s.",
			caseNumber, caseTitle, str(data["hearingDate"]))
	case "document-uploaded":
		subject = fmt.Sprintf("New document on case %s", caseNumber)
		plain = fmt.Sprintf("A document (%s) was added to case %s (%s).",
			str(data["title"]), caseNumber, caseTitle)
	default:
		subject = fmt.Sprintf("Update on case %s", caseNumber)
		plain = fmt.Sprintf("There is an update on case %s (%s).", caseNumber, caseTitle)
	}

	html = fmt.Sprintf("<p>%s</p>", plain)
	return subject, plain, html
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
