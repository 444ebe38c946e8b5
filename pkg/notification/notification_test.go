package notification_test

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kapee/pkg/mail"
	"github.com/shashiranjanraj/kapee/pkg/notification"
	"github.com/shashiranjanraj/kapee/pkg/workerpool"
)

type memMailer struct {
	mu   sync.Mutex
	sent []*mail.Message
}

func (m *memMailer) Send(_ context.Context, msg *mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type both struct{ name string }

func (both) Via() []string { return []string{notification.ChannelMail, notification.ChannelSlack} }
func (both) Kind() string  { return "test" }

func (b both) ToMail() notification.MailData {
	return notification.MailData{
		Subject:  "Hello",
		Template: template.Must(template.New("t").Parse("<p>Hi {{.}}</p>")),
		Data:     b.name,
	}
}

func (b both) ToSlack() notification.SlackData {
	return notification.SlackData{Text: "hi " + b.name}
}

type noSlack struct{}

func (noSlack) Via() []string { return []string{notification.ChannelSlack} }
func (noSlack) Kind() string  { return "broken" }

func TestSendUsesEveryChannel(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mailer := &memMailer{}
	pool := workerpool.New(1)
	defer pool.Shutdown()
	n := notification.New(mailer, pool, srv.URL)

	require.NoError(t, n.Send(context.Background(), "ada@x.com", both{"Ada"}))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ada@x.com"}, mailer.sent[0].Recipients())
	assert.Equal(t, "<p>Hi Ada</p>", mailer.sent[0].Content())
	assert.Equal(t, "hi Ada", got["text"])
}

func TestSendReportsMissingChannelImplementation(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()
	n := notification.New(&memMailer{}, pool, "")

	assert.Error(t, n.Send(context.Background(), "", noSlack{}))
}

func TestSlackIsSkippedWithoutURL(t *testing.T) {
	mailer := &memMailer{}
	pool := workerpool.New(1)
	defer pool.Shutdown()

	assert.NoError(t, notification.New(mailer, pool, "").Send(context.Background(), "a@x.com", both{"Ada"}))
}

func TestQueueRunsOnPool(t *testing.T) {
	mailer := &memMailer{}
	pool := workerpool.New(2)
	n := notification.New(mailer, pool, "")

	n.Queue(context.Background(), "a@x.com", both{"Ada"})
	pool.Shutdown()

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Len(t, mailer.sent, 1)
}
