// Package notify delivers templated email for the invite and registration
// flows. Everything here is a best-effort side effect: callers never roll
// back domain state because a message failed to send.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/pawacademy/training-platform/internal/core/ports"
)

// templates keys message bodies by notification kind. Bodies are plain text;
// the web frontend owns anything fancier.
var templates = map[ports.NotificationKind]struct {
	subject string
	body    string
}{
	ports.NotifyInvite: {
		subject: "You're invited to join Paw Academy",
		body: "Hi {{.first_name}},\n\n" +
			"You've been invited to join Paw Academy as a {{.role}}.\n" +
			"Follow this link to set up your account: {{.link}}\n\n" +
			"The invitation expires on {{.expires_at}}.\n",
	},
	ports.NotifyWelcome: {
		subject: "Welcome to Paw Academy",
		body: "Hi {{.first_name}},\n\n" +
			"Your Paw Academy account is ready. You can sign in at any time.\n",
	},
	ports.NotifyAdminNewStaff: {
		subject: "New staff member joined",
		body: "{{.first_name}} {{.last_name}} ({{.email}}) accepted their " +
			"invitation and joined as a {{.role}}.\n",
	},
}

// Mailer sends mail over SMTP.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
	log  zerolog.Logger
}

// MailerConfig carries SMTP connection settings. Username may be empty for
// unauthenticated relays (local dev).
type MailerConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func NewMailer(cfg MailerConfig, log zerolog.Logger) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
		log:  log,
	}
}

// Send renders the template for kind and delivers it to recipient.
func (m *Mailer) Send(_ context.Context, kind ports.NotificationKind, recipient string, data map[string]string) error {
	tpl, ok := templates[kind]
	if !ok {
		return fmt.Errorf("notify: unknown kind %q", kind)
	}

	body, err := renderBody(tpl.body, data)
	if err != nil {
		return fmt.Errorf("notify: render %q: %w", kind, err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, recipient, tpl.subject, body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("notify: send %q to %s: %w", kind, recipient, err)
	}

	m.log.Debug().Str("kind", string(kind)).Str("recipient", recipient).Msg("email sent")
	return nil
}

func renderBody(body string, data map[string]string) (string, error) {
	t, err := template.New("body").Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogNotifier is a Notifier that only logs. Used in development when no
// SMTP host is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, kind ports.NotificationKind, recipient string, data map[string]string) error {
	n.log.Info().
		Str("kind", string(kind)).
		Str("recipient", recipient).
		Interface("data", data).
		Msg("notification (log only)")
	return nil
}
