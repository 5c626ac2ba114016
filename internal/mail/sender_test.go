// AngelaMos | 2026
// sender_test.go

package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/library-backend/internal/config"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

func TestSMTPSenderRenderFailureIsSendError(t *testing.T) {
	sender, err := NewSMTPSender(config.MailConfig{
		Host: "127.0.0.1",
		Port: 2525,
		From: "library@example.com",
	})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Message{
		To:       "ada@example.com",
		Subject:  "Account activation",
		Template: "missing_template",
	})

	assert.ErrorIs(t, err, core.ErrSendFailed)
}
