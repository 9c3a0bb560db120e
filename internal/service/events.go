package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// publish never fails the caller; broker errors are only logged.
func publish(ctx context.Context, p events.Publisher, topic string, e events.Event) {
	if p == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if err := p.PublishEvent(ctx, topic, e.UserID, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", e.Type, "error", err)
	}
}

func isDuplicateErr(err error) bool {
	return errors.Is(err, repo.ErrDuplicate)
}
