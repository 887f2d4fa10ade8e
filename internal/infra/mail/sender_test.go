package mail

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, m...)
	return nil
}

func TestEmailSender_SendFollowUp(t *testing.T) {
	dialer := &recordingDialer{}
	sender := NewEmailSenderWithDialer(dialer, "team@example.com")

	err := sender.SendFollowUp("lead@example.com", "Lia", "", "Thanks for reaching out.\n\nAre you free <Tuesday>?")
	require.NoError(t, err)
	require.Len(t, dialer.messages, 1)

	m := dialer.messages[0]
	assert.Equal(t, []string{"lead@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Following up, Lia"}, m.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Hi Lia,")
	assert.Contains(t, raw.String(), "&lt;Tuesday&gt;")
}

func TestEmailSender_DialFailure(t *testing.T) {
	sender := NewEmailSenderWithDialer(&recordingDialer{err: errors.New("connection refused")}, "team@example.com")
	err := sender.SendFollowUp("lead@example.com", "Lia", "Hello", "Hi")
	assert.ErrorContains(t, err, "connection refused")
}

func TestParagraphs(t *testing.T) {
	assert.Equal(t, []string{"one", "two\nlines"}, paragraphs("one\r\n\r\n\n\ntwo\nlines\n"))
	assert.Nil(t, paragraphs("   "))
}
