// Package notify delivers restock alerts over email.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
)

// Notifier sends plain-text alert emails through a configured SMTP relay.
// When SMTP is not configured, Send is a logged no-op so alert scans still
// succeed.
type Notifier struct {
	cfg config.SMTPConfig
}

func NewNotifier(cfg config.SMTPConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Configured reports whether the notifier can actually deliver mail.
func (n *Notifier) Configured() bool {
	return n.cfg.Host != "" && n.cfg.User != "" && n.cfg.Password != ""
}

// Send delivers a single message to the given recipients.
func (n *Notifier) Send(to []string, subject, body string) error {
	if !n.Configured() {
		log.Warn().Msg("smtp not configured, skipping email notification")
		return nil
	}
	if len(to) == 0 {
		return nil
	}

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)

	if err := smtp.SendMail(addr, auth, n.cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	log.Info().Strs("to", to).Str("subject", subject).Msg("alert email sent")
	return nil
}

// RenderAlertBody formats the low/critical alert list into the email body.
func RenderAlertBody(alerts []domain.AlertItem) string {
	var b strings.Builder
	b.WriteString("Low/Critical stock alert\n\n")

	for _, a := range alerts {
		runOut := "no projection"
		if a.PredictedRunOutDate != nil {
			runOut = a.PredictedRunOutDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "- %s (%s): %d units on hand, reorder at %d, velocity %.2f/day, run-out %s [%s]\n",
			a.SKU, a.Name, a.CurrentStock, a.ReorderPoint, a.SalesVelocity, runOut, a.Tier)
	}

	fmt.Fprintf(&b, "\nGenerated at %s\n", time.Now().UTC().Format(time.RFC3339))
	return b.String()
}
