package mail

import (
	"context"
	"testing"
	"time"

	"github.com/mstgnz/eventpay/infra/config"
	"github.com/stretchr/testify/assert"
)

func TestFromConfig(t *testing.T) {
	assert.IsType(t, LogMailer{}, FromConfig(&config.AppConfig{}))

	m := FromConfig(&config.AppConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "bot@example.com"})
	smtp, ok := m.(*SMTPMailer)
	if assert.True(t, ok) {
		assert.Equal(t, "bot@example.com", smtp.from, "sender defaults to the SMTP user")
	}
}

func TestLogMailer_Send(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}))
	assert.ErrorIs(t, LogMailer{}.Send(context.Background(), Message{}), ErrNoRecipient)
}

func TestSMTPMailer_Send(t *testing.T) {
	t.Run("requires recipient", func(t *testing.T) {
		m := NewSMTPMailer("127.0.0.1", 1, "", "", "from@example.com")
		assert.ErrorIs(t, m.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipient)
	})

	t.Run("unreachable relay", func(t *testing.T) {
		m := NewSMTPMailer("127.0.0.1", 1, "", "", "from@example.com")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		err := m.Send(ctx, Message{To: "to@example.com", Subject: "x", Text: "y"})
		assert.Error(t, err)
	})
}
