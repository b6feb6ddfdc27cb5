package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-hmis-server/internal/config"
)

func TestNewDispatcherCascadeOrder(t *testing.T) {
	cfg := config.NotifyConfig{
		Fast2SMSAPIKey:    "k1",
		MSG91AuthKey:      "k2",
		MSG91SenderID:     "HMIS",
		TwilioAccountSID:  "AC1",
		TwilioAuthToken:   "tok",
		TwilioPhoneNumber: "+15550001111",
		TextbeltAPIKey:    "textbelt",
	}
	d := NewDispatcher(cfg, testLogger())

	names := make([]string, 0, len(d.smsProviders))
	for _, p := range d.smsProviders {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"fast2sms", "msg91", "twilio", "textbelt"}, names)
}

func TestNewDispatcherSkipsUnconfigured(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{TextbeltAPIKey: "textbelt"}, testLogger())

	require.Len(t, d.smsProviders, 1)
	assert.Equal(t, "textbelt", d.smsProviders[0].Name())
	assert.Nil(t, d.whatsapp)
	assert.Nil(t, d.mailer)
}

func TestDispatcherStatus(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{
		Fast2SMSAPIKey: "k1",
		EmailUser:      "clinic@example.com",
		EmailPass:      "secret",
		SMTPHost:       "smtp.example.com",
		SMTPPort:       "587",
	}, testLogger())

	status := d.Status()

	sms := status["sms"].(map[string]interface{})
	assert.Equal(t, true, sms["enabled"])
	assert.Equal(t, []string{"fast2sms"}, sms["providers"])
	assert.Equal(t, false, status["whatsapp"].(map[string]interface{})["enabled"])
	assert.Equal(t, true, status["email"].(map[string]interface{})["enabled"])
}

func TestSendWhatsAppUnconfigured(t *testing.T) {
	d := &Dispatcher{log: testLogger()}
	result := d.SendWhatsApp(context.Background(), "9876543210", "hello")
	assert.False(t, result.Success)
	assert.Equal(t, ChannelWhatsApp, result.Channel)
}

func TestSendEmailUnconfigured(t *testing.T) {
	d := &Dispatcher{log: testLogger()}
	result := d.SendEmail(context.Background(), "a@b.c", EmailMessage{Subject: "s"})
	assert.False(t, result.Success)
	assert.Equal(t, ChannelEmail, result.Channel)
}

func TestWhatsAppPrefixesAddresses(t *testing.T) {
	var gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotFrom = r.PostForm.Get("From")
		gotTo = r.PostForm.Get("To")
		json.NewEncoder(w).Encode(map[string]interface{}{"sid": "WA1"})
	}))
	defer srv.Close()

	p := &twilioWhatsApp{accountSID: "AC1", authToken: "tok", from: "+14155238886", baseURL: srv.URL, client: srv.Client()}
	id, err := p.Send(context.Background(), "9876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "WA1", id)
	assert.Equal(t, "whatsapp:+14155238886", gotFrom)
	assert.Equal(t, "whatsapp:+919876543210", gotTo)
}

func TestWhatsAppSandboxRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 63007, "message": "Twilio could not find a Channel with the specified From address"})
	}))
	defer srv.Close()

	p := &twilioWhatsApp{accountSID: "AC1", authToken: "tok", from: "+14155238886", baseURL: srv.URL, client: srv.Client()}
	_, err := p.Send(context.Background(), "9876543210", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "join message")
}

func TestIsTemplateRestriction(t *testing.T) {
	assert.True(t, isTemplateRestriction(errors.New("twilio: error 63016: template not approved")))
	assert.True(t, isTemplateRestriction(errors.New("twilio: 63007 channel not found")))
	assert.True(t, isTemplateRestriction(errors.New("recipient has no opt-in")))
	assert.False(t, isTemplateRestriction(errors.New("connection refused")))
	assert.False(t, isTemplateRestriction(nil))
}
