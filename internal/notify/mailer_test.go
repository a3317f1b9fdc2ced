package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okingsaam/Pulse/internal/config"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("clinic@example.com", Message{
		To:       " ana@example.com ",
		Subject:  "Reminder",
		TextBody: "see you",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"clinic@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"ana@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Reminder"}, msg.GetHeader("Subject"))
}

func TestBuildMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		from string
		msg  Message
	}{
		{"no sender", "", Message{To: "a@example.com", Subject: "s", TextBody: "b"}},
		{"no recipient", "c@example.com", Message{Subject: "s", TextBody: "b"}},
		{"no subject", "c@example.com", Message{To: "a@example.com", TextBody: "b"}},
		{"no body", "c@example.com", Message{To: "a@example.com", Subject: "s", TextBody: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildMessage(tt.from, tt.msg)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

func TestSMTPMailer_Disabled(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Enabled: false, Timeout: time.Second})
	err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "s", TextBody: "b"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSMTPMailer_InvalidMessage(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Enabled: true, From: "clinic@example.com", Host: "127.0.0.1", Port: 1, Timeout: time.Second})
	err := m.Send(context.Background(), Message{Subject: "s", TextBody: "b"})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}
