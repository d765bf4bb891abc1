package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finflow/recurring-engine/internal/application/adapter"
)

// SummaryNotifier sends a short report to the operations recipient after a
// materialization run. A missing recipient disables it.
type SummaryNotifier struct {
	sender    adapter.EmailSender
	recipient string
}

// NewSummaryNotifier creates a new summary notifier.
func NewSummaryNotifier(sender adapter.EmailSender, recipient string) *SummaryNotifier {
	return &SummaryNotifier{
		sender:    sender,
		recipient: recipient,
	}
}

// Enabled reports whether a sender and recipient are configured.
func (n *SummaryNotifier) Enabled() bool {
	return n.sender != nil && n.recipient != ""
}

// Notify sends the run summary. Failures are logged, not propagated, so a
// broken email provider never affects materialization.
func (n *SummaryNotifier) Notify(ctx context.Context, ranAt time.Time, created int, runErr error) {
	if !n.Enabled() {
		return
	}

	status := "completed"
	if runErr != nil {
		status = "completed with errors"
	}

	subject := fmt.Sprintf("Recurring run %s: %d transaction(s) created", status, created)
	text := fmt.Sprintf(
		"Recurring transaction run at %s %s.\n\nTransactions created: %d\n",
		ranAt.Format(time.RFC3339), status, created,
	)
	if runErr != nil {
		text += fmt.Sprintf("Error: %v\n", runErr)
	}

	html := fmt.Sprintf(
		"<p>Recurring transaction run at <strong>%s</strong> %s.</p><p>Transactions created: <strong>%d</strong></p>",
		ranAt.Format(time.RFC3339), status, created,
	)
	if runErr != nil {
		html += fmt.Sprintf("<p>Error: %v</p>", runErr)
	}

	err := n.sender.Send(ctx, adapter.SendEmailInput{
		To:      n.recipient,
		Name:    "Operations",
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		slog.Warn("failed to send run summary email", "error", err)
	}
}
