package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Notifier is one outbound notification sink.
type Notifier interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
}

// Dispatcher fans a notification out to every configured sink. Per-sink
// failures are collected, not fatal to the others.
type Dispatcher struct {
	sinks  []Notifier
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger, sinks ...Notifier) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]Notifier, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Dispatcher{sinks: out, logger: logger}
}

func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

func (d *Dispatcher) Send(ctx context.Context, subject, body string) error {
	if d == nil || len(d.sinks) == 0 {
		return nil
	}
	var errs []error
	for _, s := range d.sinks {
		if err := s.Send(ctx, subject, body); err != nil {
			d.logger.Warn("notify_send_failed", "sink", s.Name(), "error", err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func joinSubjectBody(subject, body string) string {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	switch {
	case subject == "":
		return body
	case body == "":
		return subject
	default:
		return subject + "\n" + body
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
