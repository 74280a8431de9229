package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorman/infrastructure"
)

type recordingDispatcher struct {
	sent     []string
	failures int
}

func (d *recordingDispatcher) Send(to, subject, body string) error {
	if d.failures > 0 {
		d.failures--
		return errors.New("smtp unavailable")
	}
	d.sent = append(d.sent, to+"|"+subject+"|"+body)
	return nil
}

func TestSendAuthLink_BuildsAbsoluteLink(t *testing.T) {
	d := &recordingDispatcher{}
	m := NewMailer(d, "https://login.example.org")

	require.NoError(t, m.SendAuthLink("bob@x.com", "bob", "abc123"))
	require.Len(t, d.sent, 1)
	assert.Contains(t, d.sent[0], "https://login.example.org/bob/abc123")
}

func TestSend_RetriesOnce(t *testing.T) {
	d := &recordingDispatcher{failures: 1}
	m := NewMailer(d, "https://login.example.org")

	require.NoError(t, m.SendShortcode("alice@x.com", "alice", "482913"))
	require.Len(t, d.sent, 1)
	assert.Contains(t, d.sent[0], "482913")
}

func TestSend_SurfacesDeliveryFailure(t *testing.T) {
	d := &recordingDispatcher{failures: 2}
	m := NewMailer(d, "https://login.example.org")

	err := m.SendOnboard("carol@x.com", "carol")
	assert.ErrorIs(t, err, infrastructure.ErrMailDelivery)
	assert.Empty(t, d.sent)
}
