package listeners

import (
	"fmt"
	"html/template"

	"github.com/shashiranjanraj/kapee/app/models"
	"github.com/shashiranjanraj/kapee/pkg/notification"
)

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`<h1>Welcome to Kapee{{if .Name}}, {{.Name}}{{end}}!</h1>
<p>Your account {{.Email}} is ready. Happy shopping.</p>`))

	contactTmpl = template.Must(template.New("contact").Parse(
		`<p>Hi {{.Name}},</p>
<p>Thanks for getting in touch. We received your message and will reply soon:</p>
<blockquote>{{.Message}}</blockquote>`))
)

type welcomeMail struct{ user models.UserView }

func (welcomeMail) Via() []string { return []string{notification.ChannelMail} }
func (welcomeMail) Kind() string  { return "welcome_mail" }

func (n welcomeMail) ToMail() notification.MailData {
	return notification.MailData{Subject: "Welcome to Kapee", Template: welcomeTmpl, Data: n.user}
}

type contactThanks struct{ contact models.Contact }

func (contactThanks) Via() []string { return []string{notification.ChannelMail} }
func (contactThanks) Kind() string  { return "contact_mail" }

func (n contactThanks) ToMail() notification.MailData {
	return notification.MailData{Subject: "We received your message", Template: contactTmpl, Data: n.contact}
}

// orderAlert tells the shop's Slack channel about a new order.
type orderAlert struct{ order models.Order }

func (orderAlert) Via() []string { return []string{notification.ChannelSlack} }
func (orderAlert) Kind() string  { return "order_alert" }

func (n orderAlert) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("New order %s", n.order.Reference),
		Attachments: []notification.SlackAttachment{{
			Color:  "good",
			Title:  fmt.Sprintf("%d item(s), total %.2f", len(n.order.Items), n.order.TotalPrice),
			Footer: "kapee",
		}},
	}
}
