package notify

import (
	"context"
	"net/http"
	"time"

	"hospital-hmis-server/internal/config"
	"hospital-hmis-server/internal/logger"
)

// Channel identifies an outbound notification channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Result is the typed outcome of a delivery attempt. Failures are carried as
// data, never as a handler-level error: notification failure must not fail
// the state mutation that triggered it.
type Result struct {
	Channel   Channel `json:"channel"`
	Provider  string  `json:"provider,omitempty"`
	Success   bool    `json:"success"`
	MessageID string  `json:"messageId,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Dispatcher fans messages out to the configured channels. SMS delivery
// walks an ordered list of capability-equivalent providers and returns on
// the first success.
type Dispatcher struct {
	smsProviders []SMSProvider
	whatsapp     *twilioWhatsApp
	mailer       *smtpMailer
	log          *logger.Logger
}

// NewDispatcher builds a dispatcher from config. Providers with missing
// credentials are left out; an empty cascade is valid and reports every
// send as a failed Result.
func NewDispatcher(cfg config.NotifyConfig, log *logger.Logger) *Dispatcher {
	client := &http.Client{Timeout: 10 * time.Second}

	d := &Dispatcher{log: log}

	if cfg.Fast2SMSAPIKey != "" {
		d.smsProviders = append(d.smsProviders, &fast2SMS{apiKey: cfg.Fast2SMSAPIKey, baseURL: fast2SMSBaseURL, client: client})
	}
	if cfg.MSG91AuthKey != "" {
		d.smsProviders = append(d.smsProviders, &msg91{authKey: cfg.MSG91AuthKey, senderID: cfg.MSG91SenderID, baseURL: msg91BaseURL, client: client})
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioPhoneNumber != "" {
		d.smsProviders = append(d.smsProviders, &twilioSMS{
			accountSID: cfg.TwilioAccountSID,
			authToken:  cfg.TwilioAuthToken,
			from:       cfg.TwilioPhoneNumber,
			baseURL:    twilioBaseURL,
			client:     client,
		})
	}
	if cfg.TextbeltAPIKey != "" {
		d.smsProviders = append(d.smsProviders, &textbelt{apiKey: cfg.TextbeltAPIKey, baseURL: textbeltBaseURL, client: client})
	}

	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioWhatsAppNumber != "" {
		d.whatsapp = &twilioWhatsApp{
			accountSID: cfg.TwilioAccountSID,
			authToken:  cfg.TwilioAuthToken,
			from:       cfg.TwilioWhatsAppNumber,
			baseURL:    twilioBaseURL,
			client:     client,
		}
	}

	if cfg.EmailUser != "" && cfg.EmailPass != "" {
		d.mailer = &smtpMailer{
			host:     cfg.SMTPHost,
			port:     cfg.SMTPPort,
			username: cfg.EmailUser,
			password: cfg.EmailPass,
			from:     cfg.EmailFrom,
		}
	}

	return d
}

// SendSMS tries each configured SMS provider in priority order and returns
// the first success, or the last failure when the whole cascade misses.
func (d *Dispatcher) SendSMS(ctx context.Context, phone, message string) Result {
	result := Result{Channel: ChannelSMS, Error: "no SMS provider configured"}

	for _, p := range d.smsProviders {
		id, err := p.Send(ctx, phone, message)
		if err == nil {
			d.log.WithComponent("notify").Infof("SMS sent via %s to %s", p.Name(), phone)
			return Result{Channel: ChannelSMS, Provider: p.Name(), Success: true, MessageID: id}
		}
		d.log.WithComponent("notify").Warnf("SMS via %s failed, trying next provider: %v", p.Name(), err)
		result = Result{Channel: ChannelSMS, Provider: p.Name(), Error: err.Error()}
	}
	return result
}

// SendWhatsApp delivers through the single Twilio WhatsApp transport.
// Template and sandbox opt-in rejections are expected for unprovisioned
// accounts and are reported as informational failures.
func (d *Dispatcher) SendWhatsApp(ctx context.Context, phone, message string) Result {
	if d.whatsapp == nil {
		return Result{Channel: ChannelWhatsApp, Error: "WhatsApp requires Twilio credentials"}
	}

	id, err := d.whatsapp.Send(ctx, phone, message)
	if err == nil {
		d.log.WithComponent("notify").Infof("WhatsApp sent to %s", phone)
		return Result{Channel: ChannelWhatsApp, Provider: d.whatsapp.Name(), Success: true, MessageID: id}
	}

	if isTemplateRestriction(err) {
		d.log.WithComponent("notify").Infof("WhatsApp template/sandbox restriction for %s: %v", phone, err)
	} else {
		d.log.WithComponent("notify").Warnf("WhatsApp send failed for %s: %v", phone, err)
	}
	return Result{Channel: ChannelWhatsApp, Provider: d.whatsapp.Name(), Error: err.Error()}
}

// SendEmail delivers over the single SMTP transport. Failure is reported as
// a boolean result and never retried.
func (d *Dispatcher) SendEmail(ctx context.Context, to string, msg EmailMessage) Result {
	if d.mailer == nil {
		return Result{Channel: ChannelEmail, Error: "email transport not configured"}
	}

	if err := d.mailer.Send(ctx, to, msg); err != nil {
		d.log.WithComponent("notify").Warnf("email to %s failed: %v", to, err)
		return Result{Channel: ChannelEmail, Provider: "smtp", Error: err.Error()}
	}
	d.log.WithComponent("notify").Infof("email sent to %s: %s", to, msg.Subject)
	return Result{Channel: ChannelEmail, Provider: "smtp", Success: true}
}

// Status reports which channels have usable configuration, for the
// messaging smoke-test endpoint.
func (d *Dispatcher) Status() map[string]interface{} {
	providers := make([]string, 0, len(d.smsProviders))
	for _, p := range d.smsProviders {
		providers = append(providers, p.Name())
	}
	return map[string]interface{}{
		"sms": map[string]interface{}{
			"providers": providers,
			"enabled":   len(d.smsProviders) > 0,
		},
		"whatsapp": map[string]interface{}{
			"enabled": d.whatsapp != nil,
		},
		"email": map[string]interface{}{
			"enabled": d.mailer != nil,
		},
	}
}
