// Package retryutil gives outbound sends a single deferred second
// chance. WhatsApp replies go through here when Twilio rejects the
// first attempt; one delayed retry covers transient API hiccups
// without turning a hard failure into a retry storm.
package retryutil

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultRetryDelay   = 2 * time.Second
	defaultRetryTimeout = 12 * time.Second
)

// AsyncRetry schedules fn to run once after delay, bounded by timeout.
// It returns immediately; the outcome is only logged under the given
// name ("whatsapp_send" becomes whatsapp_send_retry_ok and friends).
func AsyncRetry(logger *slog.Logger, name string, delay, timeout time.Duration, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	if timeout <= 0 {
		timeout = defaultRetryTimeout
	}
	if logger != nil {
		logger.Info(name+"_retry_scheduled", "delay", delay.String(), "timeout", timeout.String())
	}
	go runAfter(logger, name, delay, timeout, fn)
}

func runAfter(logger *slog.Logger, name string, delay, timeout time.Duration, fn func(ctx context.Context) error) {
	timer := time.NewTimer(delay)
	<-timer.C
	timer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		if logger != nil {
			logger.Warn(name+"_retry_failed", "error", err.Error())
		}
		return
	}
	if logger != nil {
		logger.Info(name + "_retry_ok")
	}
}
