package utils

import (
	"fmt"
	"log"

	"trainhub/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an html email through SendGrid. Callers fire it with `go`
// after their transaction commits; a failure is logged and never propagated
// into the state transition that triggered it.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig.SendgridKey == "" {
		log.Printf("[EMAIL] SendGrid disabled, skipping %q to %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail("TrainHub", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] Error sending %q to %s: %v", subject, toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] SendGrid rejected %q to %s: %d", subject, toEmail, resp.StatusCode)
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// getEmailTemplate wraps body content in the standard layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.content h2 { color: #00004D; margin-top: 0; }
			.footer { padding: 20px; text-align: center; font-size: 12px; color: #999999; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>TrainHub</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">This is an automated message from TrainHub.</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendAnswerGradedEmail notifies a learner that their answer was reviewed
func SendAnswerGradedEmail(email, name, questionTitle, grade, feedback string, points int) {
	subject := "Your answer has been reviewed"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your answer to <strong>%s</strong> has been reviewed.</p>
		<p>Grade: <strong>%s</strong> (%d points)</p>
		<p>Feedback: %s</p>`, name, questionTitle, grade, points, feedback)

	if err := SendEmail(email, name, subject, getEmailTemplate("Answer Reviewed", body)); err != nil {
		log.Printf("[EMAIL] graded notification to %s failed: %v", email, err)
	}
}

// SendQuestionReleasedEmail notifies a learner that new content is available
func SendQuestionReleasedEmail(email, name, questionTitle string) {
	subject := "New assignment released"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>A new assignment is now available: <strong>%s</strong>.</p>
		<p>Log in to get started.</p>`, name, questionTitle)

	if err := SendEmail(email, name, subject, getEmailTemplate("New Assignment", body)); err != nil {
		log.Printf("[EMAIL] release notification to %s failed: %v", email, err)
	}
}

// SendMembershipStatusEmail notifies a learner about a standing change
func SendMembershipStatusEmail(email, name, cohortName, status string) {
	subject := "Your cohort standing has changed"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your standing in cohort <strong>%s</strong> is now <strong>%s</strong>.</p>`,
		name, cohortName, status)

	if err := SendEmail(email, name, subject, getEmailTemplate("Cohort Update", body)); err != nil {
		log.Printf("[EMAIL] membership notification to %s failed: %v", email, err)
	}
}
