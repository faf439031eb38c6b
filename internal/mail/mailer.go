package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Mailer: transport notifikasi order. Kegagalan kirim di-return apa
// adanya ke caller — checkout memang harus gagal kalau mail gagal.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPMailer kirim plain text ke mailbox toko (bukan ke customer).
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string // mailbox toko
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(m.Host,
		gomail.WithPort(m.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.Username),
		gomail.WithPassword(m.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
