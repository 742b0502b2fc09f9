package services

import (
	"context"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/trigger"
	"go.uber.org/zap"
)

// Notifier delivers user-facing success and failure messages.
// Delivery is best effort and never fails the calling operation.
type Notifier interface {
	Notify(ctx context.Context, kind models.NotificationKind, title, description string)
}

// NotifyFailure reports a failed operation through n. Precondition failures
// are described by their unmet conditions.
func NotifyFailure(ctx context.Context, n Notifier, operation string, err error) {
	if n == nil || err == nil {
		return
	}
	title := "Could not " + strings.ReplaceAll(operation, "_", " ")
	description := err.Error()
	if unmet := apperrors.UnmetConditions(err); len(unmet) > 0 {
		description = "Unmet conditions: " + strings.Join(unmet, ", ")
	}
	n.Notify(ctx, models.NotificationError, title, description)
}

// LogNotifier writes notifications to the structured log
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, kind models.NotificationKind, title, description string) {
	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("title", title),
		zap.String("description", description),
	}
	if kind == models.NotificationError {
		logger.Warn("Notification", fields...)
	} else {
		logger.Info("Notification", fields...)
	}
	metrics.NotificationsSent.WithLabelValues("log", string(kind), "success").Inc()
}

// WebhookNotifier posts notifications as JSON to an external webhook
type WebhookNotifier struct {
	trigger *trigger.Trigger
	now     func() time.Time
}

// NewWebhookNotifier creates a notifier backed by t. A disabled trigger drops every notification.
func NewWebhookNotifier(t *trigger.Trigger) *WebhookNotifier {
	return &WebhookNotifier{trigger: t, now: time.Now}
}

func (n *WebhookNotifier) Notify(_ context.Context, kind models.NotificationKind, title, description string) {
	if !n.trigger.Enabled() {
		return
	}

	n.trigger.FireAsync(models.Notification{
		Kind:        kind,
		Title:       title,
		Description: description,
		SentAt:      n.now().UTC(),
	})
	metrics.NotificationsSent.WithLabelValues("webhook", string(kind), "queued").Inc()
}

// MultiNotifier fans a notification out to every wrapped notifier
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, kind models.NotificationKind, title, description string) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, kind, title, description)
		}
	}
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*WebhookNotifier)(nil)
	_ Notifier = MultiNotifier(nil)
)
