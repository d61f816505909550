// Package notify builds and delivers alert notifications for Critical
// defect records. Delivery channels implement Sender; which channel runs is
// fixed per deployment by configuration, selected in main. All delivery
// failures are absorbed and logged here: dispatch is background work with no
// caller to report to.
package notify

import (
	"context"

	"github.com/linnemanlabs/go-core/log"

	"github.com/Adityad84/neural-track/internal/triage"
)

// Attachment is binary content prepared for transport, base64-encoded.
type Attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Message is one alert notification ready for a delivery channel.
type Message struct {
	Subject    string
	HTMLBody   string
	Attachment *Attachment
}

// Sender delivers a message over one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// Dispatcher composes notifications from triaged records and hands them to
// the configured sender. A nil sender is a valid deployment state: dispatch
// is skipped with a log line, not an error.
type Dispatcher struct {
	sender   Sender
	resolver *Resolver
	logger   log.Logger
}

// NewDispatcher creates a Dispatcher. Sender may be nil (no channel
// configured).
func NewDispatcher(sender Sender, resolver *Resolver, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Nop()
	}
	return &Dispatcher{
		sender:   sender,
		resolver: resolver,
		logger:   logger,
	}
}

// Dispatch builds the notification for a record and attempts one delivery.
// There is no retry and no mid-dispatch failover; the outcome is returned
// for metrics and otherwise only logged.
func (d *Dispatcher) Dispatch(ctx context.Context, r *triage.Record) triage.DispatchOutcome {
	if d.sender == nil {
		d.logger.Info(ctx, "no notification channel configured, skipping alert", "record_id", r.ID)
		return triage.DispatchSkipped
	}

	msg := BuildMessage(r)

	if d.resolver != nil {
		if att := d.resolver.Resolve(ctx, r.ImageURL); att != nil {
			msg.Attachment = att
		}
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error(ctx, err, "alert delivery failed",
			"record_id", r.ID,
			"channel", d.sender.Name(),
		)
		return triage.DispatchFailed
	}

	d.logger.Info(ctx, "alert sent",
		"record_id", r.ID,
		"channel", d.sender.Name(),
		"has_attachment", msg.Attachment != nil,
	)
	return triage.DispatchSent
}
