// Package notification delivers notifications over mail and Slack without
// holding up the request that caused them.
//
// Define a notification:
//
//	type orderAlert struct{ order models.Order }
//	func (orderAlert) Via() []string { return []string{notification.ChannelSlack} }
//	func (n orderAlert) ToSlack() notification.SlackData {
//	    return notification.SlackData{Text: "New order " + n.order.Reference}
//	}
//
// Queue it:
//
//	notifier.Queue(ctx, "", orderAlert{order})
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/shashiranjanraj/kapee/pkg/logger"
	"github.com/shashiranjanraj/kapee/pkg/mail"
	"github.com/shashiranjanraj/kapee/pkg/metrics"
	"github.com/shashiranjanraj/kapee/pkg/workerpool"
)

const (
	ChannelMail  = "mail"
	ChannelSlack = "slack"
)

// MailData carries an e-mail. Template, when set, is rendered with Data and
// wins over Body.
type MailData struct {
	To       string // overrides the notifiable address if set
	Subject  string
	Body     string
	Template *template.Template
	Data     any
}

// SlackData carries a Slack message payload.
type SlackData struct {
	WebhookURL  string // overrides the notifier's default if set
	Text        string
	Attachments []SlackAttachment
}

// SlackAttachment is a single Slack message attachment block.
type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// Notification names the channels it goes out on.
type Notification interface {
	Via() []string
	// Kind labels logs and the jobs metric.
	Kind() string
}

type Mailable interface {
	ToMail() MailData
}

type Slackable interface {
	ToSlack() SlackData
}

// Notifier sends notifications through a mailer and a Slack webhook.
type Notifier struct {
	mailer   mail.Mailer
	pool     *workerpool.Pool
	client   *http.Client
	slackURL string
}

// New returns a notifier queueing on pool. An empty slackURL disables the
// Slack channel unless a notification carries its own URL.
func New(mailer mail.Mailer, pool *workerpool.Pool, slackURL string) *Notifier {
	return &Notifier{
		mailer:   mailer,
		pool:     pool,
		client:   &http.Client{Timeout: 5 * time.Second},
		slackURL: slackURL,
	}
}

// Send dispatches n on every channel it names and returns the joined errors.
func (s *Notifier) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		if err := s.dispatch(ctx, address, channel, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", channel, err))
		}
	}
	err := errors.Join(errs...)
	metrics.RecordJob(n.Kind(), err)
	return err
}

// Queue runs Send on the worker pool. A full pool drops the notification.
func (s *Notifier) Queue(ctx context.Context, address string, n Notification) {
	log := logger.WithCtx(ctx).With("notification", n.Kind())
	err := s.pool.Submit(func() {
		if err := s.Send(ctx, address, n); err != nil {
			log.Error("notification failed", "error", err)
		}
	})
	if err != nil {
		metrics.RecordJob(n.Kind(), err)
		log.Warn("notification dropped", "error", err)
	}
}

func (s *Notifier) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("%T does not implement Mailable", n)
		}
		return s.sendMail(ctx, address, m.ToMail())

	case ChannelSlack:
		sl, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("%T does not implement Slackable", n)
		}
		return s.sendSlack(ctx, sl.ToSlack())

	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}

func (s *Notifier) sendMail(ctx context.Context, address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}

	msg := mail.To(to).Subject(d.Subject)
	if d.Template != nil {
		msg.Template(d.Template, d.Data)
	} else {
		msg.Body(d.Body)
	}
	return s.mailer.Send(ctx, msg)
}

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func (s *Notifier) sendSlack(ctx context.Context, d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = s.slackURL
	}
	if url == "" {
		// Not configured.
		return nil
	}

	raw, err := json.Marshal(slackPayload{Text: d.Text, Attachments: d.Attachments})
	if err != nil {
		return fmt.Errorf("slack marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack returned HTTP %d", resp.StatusCode)
	}
	return nil
}
