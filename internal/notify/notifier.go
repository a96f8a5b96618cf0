// Package notify implements the transient notification surface. Sends are
// fire-and-forget: a full recorder drops the oldest entry rather than block
// the mutating operation that produced the message.
package notify

import (
	"sync"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/domain"

	"go.uber.org/zap"
)

const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// ZapNotifier writes notifications to the structured log.
type ZapNotifier struct {
	logger *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	return &ZapNotifier{logger: logger}
}

func (n *ZapNotifier) Success(msg string) {
	n.logger.Info("notification", zap.String("level", LevelSuccess), zap.String("message", msg))
}

func (n *ZapNotifier) Error(msg string) {
	n.logger.Warn("notification", zap.String("level", LevelError), zap.String("message", msg))
}

func (n *ZapNotifier) Info(msg string) {
	n.logger.Info("notification", zap.String("level", LevelInfo), zap.String("message", msg))
}

// Recorder keeps a bounded in-memory log of notifications so the SPA can
// drain them via GET /v1/notifications. Oldest entries are evicted first.
type Recorder struct {
	mu    sync.Mutex
	items []domain.Notification
	max   int
	now   func() time.Time
}

func NewRecorder(max int) *Recorder {
	if max <= 0 {
		max = 100
	}
	return &Recorder{max: max, now: time.Now}
}

func (r *Recorder) Success(msg string) { r.push(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.push(LevelError, msg) }
func (r *Recorder) Info(msg string)    { r.push(LevelInfo, msg) }

func (r *Recorder) push(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, domain.Notification{
		Level:     level,
		Message:   msg,
		CreatedAt: r.now(),
	})
	if len(r.items) > r.max {
		r.items = r.items[len(r.items)-r.max:]
	}
}

// Drain returns all pending notifications and clears the buffer.
func (r *Recorder) Drain() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.items
	r.items = nil
	return out
}

// Pending returns a snapshot without clearing.
func (r *Recorder) Pending() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Tee fans a notification out to several sinks, typically the recorder
// plus the structured log.
type Tee struct {
	sinks []interface {
		Success(string)
		Error(string)
		Info(string)
	}
}

func NewTee(sinks ...interface {
	Success(string)
	Error(string)
	Info(string)
}) *Tee {
	return &Tee{sinks: sinks}
}

func (t *Tee) Success(msg string) {
	for _, s := range t.sinks {
		s.Success(msg)
	}
}

func (t *Tee) Error(msg string) {
	for _, s := range t.sinks {
		s.Error(msg)
	}
}

func (t *Tee) Info(msg string) {
	for _, s := range t.sinks {
		s.Info(msg)
	}
}

// MetricsSink counts notifications by level. The message text is not
// recorded, only the level label.
type MetricsSink struct {
	incr func(level string)
}

func NewMetricsSink(incr func(level string)) *MetricsSink {
	return &MetricsSink{incr: incr}
}

func (s *MetricsSink) Success(string) { s.incr(LevelSuccess) }
func (s *MetricsSink) Error(string)   { s.incr(LevelError) }
func (s *MetricsSink) Info(string)    { s.incr(LevelInfo) }
