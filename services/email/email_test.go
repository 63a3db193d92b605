package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/icba/core"
)

func TestConsoleServiceMock(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf)

	to := []mail.Address{{Name: "John Doe", Address: "jdoe@icba.test"}}
	svc.SendMessages(
		&core.EmailMessage{To: to, Subject: "Password Reset", TemplateName: "reset_code", TemplateData: map[string]interface{}{
			"FirstName": "John",
			"LastName":  "Doe",
			"Code":      "AB12CD",
			"ExpiresIn": "60 minutes",
		}},
		&core.EmailMessage{To: to, Subject: "Hello", BodyStr: "plain body"},
		&core.EmailMessage{Subject: "nobody", BodyStr: "lost"},
		&core.EmailMessage{To: to, Subject: "missing template", TemplateName: "nope"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].TextContent, "AB12CD")
	assert.Contains(t, sent[0].HTMLContent, "AB12CD")
	assert.Equal(t, "plain body", sent[1].TextContent)
	assert.Empty(t, sent[1].HTMLContent)

	out := svc.format(sent[0])
	assert.Contains(t, out, "Subject: [ICBA] Password Reset")
	assert.Contains(t, out, "To: \"John Doe\" <jdoe@icba.test>")
	assert.False(t, strings.Contains(out, "CC:"))

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSendgridService(conf, nil)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "John Doe", Address: "jdoe@icba.test"}},
		Cc:          []mail.Address{{Address: "prof@icba.test"}},
		Subject:     "Welcome",
		TextContent: "hi",
	})
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[ICBA] Welcome", m.Personalizations[0].Subject)
	assert.Equal(t, "jdoe@icba.test", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "prof@icba.test", m.Personalizations[0].CC[0].Address)
	assert.Equal(t, conf.DefaultFromEmail, m.From.Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
