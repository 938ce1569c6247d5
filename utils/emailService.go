package utils

import (
	"fmt"
	"log"
	"time"

	"meetly/config"
	"meetly/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers a transactional mail through SendGrid.
func SendEmail(toName, toEmail, subject, htmlBody string) error {
	if config.AppConfig.SendGridKey == "" {
		log.Printf("[EMAIL] SendGrid not configured, skipping mail to %s (%s)", toEmail, subject)
		return nil
	}

	from := mail.NewEmail("Meetly", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] Error sending mail to %s: %v", toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] SendGrid rejected mail to %s: %d %s", toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid rejected mail: %d", resp.StatusCode)
	}
	return nil
}

// getEmailTemplate wraps body content in the shared layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A2B4C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A2B4C; line-height: 1.6; }
			.content h2 { color: #1A2B4C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3B82F6; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3B82F6; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>Meetly</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You received this mail because a booking involves your email address.
			</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

func bookingInfoBox(booking *models.Booking) string {
	when := booking.BookingStartTime.Format("Mon, 02 Jan 2006 15:04 MST")
	body := fmt.Sprintf(`<div class="info-box"><strong>%s</strong><br>%s<br>Duration: %d minutes</div>`,
		booking.Title, when, int(booking.BookingEndTime.Sub(booking.BookingStartTime).Minutes()))
	if booking.MeetingURL != "" {
		body += fmt.Sprintf(`<a class="btn" href="%s">Join meeting</a>`, booking.MeetingURL)
	}
	return body
}

// SendBookingConfirmation mails the attendee after a successful booking.
func SendBookingConfirmation(toName, toEmail string, booking *models.Booking) {
	content := fmt.Sprintf(`<p>Hi %s,</p><p>Your booking is confirmed.</p>%s`, toName, bookingInfoBox(booking))
	if booking.MeetingURL == "" {
		content += `<p>The meeting link will follow in a separate mail once it is ready.</p>`
	}
	if err := SendEmail(toName, toEmail, "Booking confirmed: "+booking.Title, getEmailTemplate("Booking confirmed", content)); err != nil {
		log.Printf("[EMAIL] Failed to send booking confirmation for %s: %v", booking.Reference, err)
	}
}

// SendBookingCancellation mails the attendee after a cancellation.
func SendBookingCancellation(toName, toEmail string, booking *models.Booking) {
	content := fmt.Sprintf(`<p>Hi %s,</p><p>The following booking was cancelled.</p>%s`, toName, bookingInfoBox(booking))
	if err := SendEmail(toName, toEmail, "Booking cancelled: "+booking.Title, getEmailTemplate("Booking cancelled", content)); err != nil {
		log.Printf("[EMAIL] Failed to send cancellation mail for %s: %v", booking.Reference, err)
	}
}

// SendBookingReminder mails the attendee ahead of an upcoming booking.
func SendBookingReminder(toName, toEmail string, booking *models.Booking) {
	starts := time.Until(booking.BookingStartTime).Round(time.Minute)
	content := fmt.Sprintf(`<p>Hi %s,</p><p>Reminder: your booking starts in about %s.</p>%s`, toName, starts, bookingInfoBox(booking))
	if err := SendEmail(toName, toEmail, "Upcoming booking: "+booking.Title, getEmailTemplate("Upcoming booking", content)); err != nil {
		log.Printf("[EMAIL] Failed to send reminder for %s: %v", booking.Reference, err)
	}
}
