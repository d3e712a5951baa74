package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"scout/internal/config"
)

func testMessage() Message {
	return Message{
		From:    "scout@example.com",
		To:      "me@example.com",
		Subject: "[Scout] Weekrapport 2026-03-09",
		Body:    "# Rapport\n\nInhoud",
	}
}

func TestSubject(t *testing.T) {
	date := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, "[Scout] Weekrapport 2026-03-09", Subject("[Scout]", date))
	assert.Equal(t, "Weekrapport 2026-03-09", Subject("", date))
}

func TestResendSender_Success(t *testing.T) {
	var got resend.SendEmailRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer server.Close()

	sender := NewResendSender(ResendConfig{APIKey: "re_test", BaseURL: server.URL}, nil)
	defer sender.httpClient.CloseIdleConnections()

	assert.True(t, sender.Send(context.Background(), testMessage()))
	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, resend.SendEmailRequest{
		From:    "scout@example.com",
		To:      []string{"me@example.com"},
		Subject: "[Scout] Weekrapport 2026-03-09",
		Text:    "# Rapport\n\nInhoud",
	}, got)
}

func TestResendSender_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.ErrorLevel)
	sender := NewResendSender(ResendConfig{APIKey: "re_test", BaseURL: server.URL}, zap.New(core))
	defer sender.httpClient.CloseIdleConnections()

	err := sender.Deliver(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid from field")

	assert.False(t, sender.Send(context.Background(), testMessage()))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "resend", logs.All()[0].ContextMap()["provider"])
}

func TestResendSender_MissingKey(t *testing.T) {
	sender := NewResendSender(ResendConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	assert.False(t, sender.Send(context.Background(), testMessage()))
}

func TestSMTPSender_InvalidAddress(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1}, nil)
	msg := testMessage()
	msg.From = "not an address"
	err := sender.Deliver(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestSMTPSender_UnreachableHost(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, Username: "u", Password: "p"}, nil)
	assert.False(t, sender.Send(ctx, testMessage()))
}

func TestSMTPSender_NegotiatesLoginMechanism(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "mail.example.com", Username: "u", Password: "p"}, nil)
	assert.Equal(t, gomail.SMTPAuthAutoDiscover, sender.authType)

	client, err := sender.newClient()
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com:587", client.ServerAddr())
	assert.Equal(t, "TLSMandatory", client.TLSPolicy())
}

func TestBuildMessage(t *testing.T) {
	m, err := buildMessage(testMessage())
	require.NoError(t, err)
	assert.Equal(t, []string{"[Scout] Weekrapport 2026-03-09"}, m.GetGenHeader("Subject"))
}

func TestNewSenderFromConfig(t *testing.T) {
	s, err := NewSenderFromConfig(config.EmailConfig{ResendAPIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	s, err = NewSenderFromConfig(config.EmailConfig{Provider: "smtp", SMTPHost: "mail.example.com"}, nil)
	require.NoError(t, err)
	require.IsType(t, &SMTPSender{}, s)
	assert.Equal(t, 587, s.(*SMTPSender).cfg.Port)

	_, err = NewSenderFromConfig(config.EmailConfig{Provider: "pigeon"}, nil)
	assert.Error(t, err)
}
