package core

import (
	"context"
	"time"

	"loanlocator/internal/blob"
	"loanlocator/pkg/domain"
)

// Clock supplies timestamps for record writes and operation timing.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Logger is the structured logging surface used by the service. Arguments are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// AuditStatus classifies an audited mutation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one admin mutation.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	Key       string
	Count     int
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry for every admin mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

// LogAuditRecorder writes audit entries through a Logger.
type LogAuditRecorder struct {
	Logger Logger
}

// Record implements AuditRecorder.
func (r LogAuditRecorder) Record(_ context.Context, e AuditEntry) {
	if r.Logger == nil {
		return
	}
	args := []any{"operation", e.Operation, "entity", string(e.Entity), "status", string(e.Status), "duration", e.Duration}
	if e.Key != "" {
		args = append(args, "key", e.Key)
	}
	if e.Count > 0 {
		args = append(args, "count", e.Count)
	}
	if e.Error != "" {
		args = append(args, "error", e.Error)
	}
	r.Logger.Info("audit", args...)
}

type serviceOptions struct {
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	audit   AuditRecorder
	archive blob.Store
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		metrics: noopMetrics{},
		audit:   noopAudit{},
	}
}

// ServiceOption configures optional collaborators of Service.
type ServiceOption func(*serviceOptions)

// WithClock overrides the timestamp source.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithAuditRecorder sets the admin mutation audit sink.
func WithAuditRecorder(a AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if a != nil {
			o.audit = a
		}
	}
}

// WithArchive enables ArchiveExport and ImportArchive against store.
func WithArchive(store blob.Store) ServiceOption {
	return func(o *serviceOptions) { o.archive = store }
}
