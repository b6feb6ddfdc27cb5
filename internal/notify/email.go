package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailMessage is a rendered email ready for transport.
type EmailMessage struct {
	Subject string
	HTML    string
}

// smtpMailer sends HTML mail over a single SMTP transport.
type smtpMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func (m *smtpMailer) Send(ctx context.Context, to string, msg EmailMessage) error {
	// smtp.SendMail has no context hook; honor cancellation up front so a
	// cancelled sweep does not queue further sends.
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := m.host + ":" + m.port
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(b.String()))
}
