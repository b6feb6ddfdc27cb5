package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	fast2SMSBaseURL = "https://www.fast2sms.com"
	msg91BaseURL    = "https://api.msg91.com"
	twilioBaseURL   = "https://api.twilio.com"
	textbeltBaseURL = "https://textbelt.com"
)

// SMSProvider is one member of the SMS delivery cascade. Send returns the
// vendor's message ID on success.
type SMSProvider interface {
	Name() string
	Send(ctx context.Context, phone, message string) (string, error)
}

// withIndiaPrefix matches the vendor expectation of a 91-prefixed number.
func withIndiaPrefix(phone string) string {
	if strings.HasPrefix(phone, "91") {
		return phone
	}
	return "91" + phone
}

// fast2SMS is the first-priority provider.
type fast2SMS struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func (p *fast2SMS) Name() string { return "fast2sms" }

func (p *fast2SMS) Send(ctx context.Context, phone, message string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"route":    "q",
		"message":  message,
		"language": "english",
		"flash":    0,
		"numbers":  withIndiaPrefix(phone),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/dev/bulkV2", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Return    bool   `json:"return"`
		RequestID string `json:"request_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("fast2sms: decoding response: %w", err)
	}
	if !body.Return {
		return "", fmt.Errorf("fast2sms: %s", orDefault(body.Message, "service error"))
	}
	return body.RequestID, nil
}

// msg91 is the second-priority provider.
type msg91 struct {
	authKey  string
	senderID string
	baseURL  string
	client   *http.Client
}

func (p *msg91) Name() string { return "msg91" }

func (p *msg91) Send(ctx context.Context, phone, message string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"sender":    p.senderID,
		"short_url": "0",
		"mobiles":   withIndiaPrefix(phone),
		"message":   message,
		"route":     "4", // transactional route
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v5/flow/", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authkey", p.authKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Type      string `json:"type"`
		RequestID string `json:"request_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("msg91: decoding response: %w", err)
	}
	if body.Type != "success" {
		return "", fmt.Errorf("msg91: %s", orDefault(body.Message, "service error"))
	}
	return body.RequestID, nil
}

// twilioSMS is the third-priority provider.
type twilioSMS struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

func (p *twilioSMS) Name() string { return "twilio" }

func (p *twilioSMS) Send(ctx context.Context, phone, message string) (string, error) {
	return twilioSend(ctx, p.client, p.baseURL, p.accountSID, p.authToken, p.from, formatE164(phone), message)
}

// textbelt is the free last-resort fallback.
type textbelt struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func (p *textbelt) Name() string { return "textbelt" }

func (p *textbelt) Send(ctx context.Context, phone, message string) (string, error) {
	form := url.Values{}
	form.Set("phone", formatE164(phone))
	form.Set("message", message)
	form.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/text", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		TextID  string `json:"textId"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("textbelt: decoding response: %w", err)
	}
	if !body.Success {
		return "", fmt.Errorf("textbelt: %s", orDefault(body.Error, "service error"))
	}
	return body.TextID, nil
}

// twilioSend posts to the Twilio Messages endpoint, shared by SMS and
// WhatsApp transports.
func twilioSend(ctx context.Context, client *http.Client, baseURL, sid, token, from, to, message string) (string, error) {
	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", baseURL, sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(sid, token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio: %s", strings.TrimSpace(string(raw)))
	}

	var body struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("twilio: decoding response: %w", err)
	}
	return body.SID, nil
}

// formatE164 normalizes a local Indian number to E.164 for Twilio.
func formatE164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	phone = strings.TrimLeft(phone, "0")
	if strings.HasPrefix(phone, "91") && len(phone) > 10 {
		return "+" + phone
	}
	return "+91" + phone
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
