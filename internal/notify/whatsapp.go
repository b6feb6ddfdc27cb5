package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// twilioWhatsApp delivers through the Twilio WhatsApp transport. Sandbox
// accounts reject messages until the recipient opts in; those rejections are
// expected and classified by isTemplateRestriction.
type twilioWhatsApp struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

func (p *twilioWhatsApp) Name() string { return "twilio-whatsapp" }

func (p *twilioWhatsApp) Send(ctx context.Context, phone, message string) (string, error) {
	from := "whatsapp:" + p.from
	to := "whatsapp:" + formatE164(phone)

	id, err := twilioSend(ctx, p.client, p.baseURL, p.accountSID, p.authToken, from, to, message)
	if err != nil {
		if isTemplateRestriction(err) {
			return "", errors.New("WhatsApp sandbox: user may need to send the join message first")
		}
		return "", err
	}
	return id, nil
}

// isTemplateRestriction recognizes the Twilio error codes for unapproved
// templates (63016) and missing sandbox opt-in (63007).
func isTemplateRestriction(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "63016") ||
		strings.Contains(msg, "63007") ||
		strings.Contains(msg, "template") ||
		strings.Contains(msg, "opt-in") ||
		strings.Contains(msg, "join message")
}
