package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-hmis-server/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error")
}

func TestFast2SMSSend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dev/bulkV2", r.URL.Path)
		gotAuth = r.Header.Get("authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{"return": true, "request_id": "f2s-123"})
	}))
	defer srv.Close()

	p := &fast2SMS{apiKey: "key-1", baseURL: srv.URL, client: srv.Client()}
	id, err := p.Send(context.Background(), "9876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "f2s-123", id)
	assert.Equal(t, "key-1", gotAuth)
	assert.Equal(t, "919876543210", gotBody["numbers"], "local numbers get the 91 prefix")
}

func TestFast2SMSSendErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"return": false, "message": "invalid api key"})
	}))
	defer srv.Close()

	p := &fast2SMS{apiKey: "bad", baseURL: srv.URL, client: srv.Client()}
	_, err := p.Send(context.Background(), "9876543210", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestMSG91Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v5/flow/", r.URL.Path)
		require.Equal(t, "auth-1", r.Header.Get("Authkey"))
		json.NewEncoder(w).Encode(map[string]interface{}{"type": "success", "request_id": "m91-1"})
	}))
	defer srv.Close()

	p := &msg91{authKey: "auth-1", senderID: "HMIS", baseURL: srv.URL, client: srv.Client()}
	id, err := p.Send(context.Background(), "9876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "m91-1", id)
}

func TestTextbeltSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+919876543210", r.PostForm.Get("phone"))
		assert.Equal(t, "textbelt", r.PostForm.Get("key"))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "textId": "tb-9"})
	}))
	defer srv.Close()

	p := &textbelt{apiKey: "textbelt", baseURL: srv.URL, client: srv.Client()}
	id, err := p.Send(context.Background(), "9876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "tb-9", id)
}

func TestTwilioSMSSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "tok", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+919876543210", r.PostForm.Get("To"))
		json.NewEncoder(w).Encode(map[string]interface{}{"sid": "SM1"})
	}))
	defer srv.Close()

	p := &twilioSMS{accountSID: "AC123", authToken: "tok", from: "+15550001111", baseURL: srv.URL, client: srv.Client()}
	id, err := p.Send(context.Background(), "9876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "SM1", id)
}

// stubProvider lets cascade tests script outcomes without HTTP.
type stubProvider struct {
	name string
	id   string
	err  error
	hits int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Send(ctx context.Context, phone, message string) (string, error) {
	s.hits++
	return s.id, s.err
}

func TestSendSMSCascadeStopsAtFirstSuccess(t *testing.T) {
	first := &stubProvider{name: "first", err: assert.AnError}
	second := &stubProvider{name: "second", id: "ok-2"}
	third := &stubProvider{name: "third", id: "ok-3"}

	d := &Dispatcher{smsProviders: []SMSProvider{first, second, third}, log: testLogger()}
	result := d.SendSMS(context.Background(), "9876543210", "hello")

	assert.True(t, result.Success)
	assert.Equal(t, "second", result.Provider)
	assert.Equal(t, "ok-2", result.MessageID)
	assert.Equal(t, 1, first.hits)
	assert.Equal(t, 1, second.hits)
	assert.Equal(t, 0, third.hits, "cascade must stop at the first success")
}

func TestSendSMSCascadeReportsLastFailure(t *testing.T) {
	first := &stubProvider{name: "first", err: assert.AnError}
	second := &stubProvider{name: "second", err: assert.AnError}

	d := &Dispatcher{smsProviders: []SMSProvider{first, second}, log: testLogger()}
	result := d.SendSMS(context.Background(), "9876543210", "hello")

	assert.False(t, result.Success)
	assert.Equal(t, "second", result.Provider)
	assert.NotEmpty(t, result.Error)
}

func TestSendSMSNoProviders(t *testing.T) {
	d := &Dispatcher{log: testLogger()}
	result := d.SendSMS(context.Background(), "9876543210", "hello")
	assert.False(t, result.Success)
	assert.Equal(t, ChannelSMS, result.Channel)
}

func TestFormatE164(t *testing.T) {
	assert.Equal(t, "+919876543210", formatE164("9876543210"))
	assert.Equal(t, "+919876543210", formatE164("919876543210"))
	assert.Equal(t, "+15550001111", formatE164("+15550001111"))
	assert.Equal(t, "+919876543210", formatE164("09876543210"))
}

func TestWithIndiaPrefix(t *testing.T) {
	assert.Equal(t, "919876543210", withIndiaPrefix("9876543210"))
	assert.Equal(t, "919876543210", withIndiaPrefix("919876543210"))
}
