package notify

import (
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailMessage is a plain-text notification email.
type EmailMessage struct {
	ToName  string
	ToAddr  string
	Subject string
	Body    string
}

// EmailSender is any service that can send notification emails.
type EmailSender interface {
	// Send delivers asynchronously; failures are logged, not returned.
	// Notification email is best-effort by design of the in-app store
	// being the source of truth.
	Send(msg EmailMessage)
}

// --- sendgrid ---

type sendgridSender struct {
	key      string
	from     *sgmail.Email
	subjPref string
}

var _ EmailSender = (*sendgridSender)(nil)

func NewSendgridSender(apiKey, fromName, fromAddr string) EmailSender {
	return &sendgridSender{
		key:      apiKey,
		from:     sgmail.NewEmail(fromName, fromAddr),
		subjPref: "[" + fromName + "] ",
	}
}

func (s *sendgridSender) Send(msg EmailMessage) {
	go func() {
		m := sgmail.NewSingleEmail(s.from, s.subjPref+msg.Subject,
			sgmail.NewEmail(msg.ToName, msg.ToAddr), msg.Body, "")
		resp, err := sendgrid.NewSendClient(s.key).Send(m)
		if err != nil {
			log.Printf("sendgrid: send failed: %v", err)
			return
		}
		if resp.StatusCode >= 300 {
			log.Printf("sendgrid: send status %d", resp.StatusCode)
		}
	}()
}

// --- console (dev fallback) ---

type consoleSender struct{}

var _ EmailSender = consoleSender{}

// NewConsoleSender logs instead of sending; used when no API key is set.
func NewConsoleSender() EmailSender { return consoleSender{} }

func (consoleSender) Send(msg EmailMessage) {
	// Recipient address deliberately not logged.
	log.Printf("email (console): subject=%q bytes=%d", msg.Subject, len(msg.Body))
}
