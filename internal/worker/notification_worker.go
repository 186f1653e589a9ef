package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/service"
)

const dispatchBatchSize = 50

// StartNotificationWorker registers event handlers and launches the queue
// drain loop. The loop stops when ctx is cancelled; interval <= 0 disables
// draining (handlers still queue).
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, interval time.Duration, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()

	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent, err := notificationService.DispatchPending(ctx, dispatchBatchSize)
				if err != nil {
					logger.Warn("notification dispatch failed", zap.Error(err))
					continue
				}
				if sent > 0 {
					logger.Debug("notifications dispatched", zap.Int("count", sent))
				}
			}
		}
	}()
}
