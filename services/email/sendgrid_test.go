package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/facultypref/core"
	logsvc "github.com/trezcool/facultypref/services/logger"
)

func newSendgridService() *sendgridService {
	conf := &core.Config{AppName: "Masomo", Email: core.EmailConfig{DefaultFrom: mail.Address{Name: "Admin", Address: "admin@test.edu"}}}
	return NewSendgridService(conf, logsvc.NewTestLogger()).(*sendgridService)
}

func TestSendgridService_v3Mail(t *testing.T) {
	svc := newSendgridService()

	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "hod@test.edu"}, {Name: "Registrar", Address: "registrar@test.edu"}},
		Subject:     "Faculty preferences digest",
		TextContent: "MATH\n  1. Alice: 3\n",
	}
	require.NoError(t, msg.Attach(strings.NewReader("a,b\n1,2\n"), "faculty_summary.csv", "text/csv"))

	m := svc.v3Mail(msg)
	assert.Equal(t, "admin@test.edu", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Masomo] Faculty preferences digest", p.Subject)
	require.Len(t, p.To, 2)
	assert.Equal(t, "registrar@test.edu", p.To[1].Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "faculty_summary.csv", m.Attachments[0].Filename)
	assert.Equal(t, "attachment", m.Attachments[0].Disposition)
	assert.Equal(t, msg.Attachments[0].Content.String(), m.Attachments[0].Content)
}

func TestSendgridService_SendMessages_skipsEmpty(t *testing.T) {
	svc := newSendgridService()

	// neither message reaches the API
	svc.SendMessages(
		&core.EmailMessage{Subject: "no recipient", TextContent: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "hod@test.edu"}}, Subject: "no content"},
	)
	svc.Wait()
}
