package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *log.Logger
}

// NewLogUseCaseObserver writes use-case events through logger. Successful
// calls are logged at info level and failures at error level.
func NewLogUseCaseObserver(logger *log.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger.WithPrefix("use-case")}
}

func (o *logUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	kv := make([]any, 0, 6+len(event.Fields)*2)
	kv = append(kv,
		"name", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for _, k := range sortedKeys(event.Fields) {
		kv = append(kv, k, event.Fields[k])
	}
	if event.Err != nil {
		kv = append(kv, "err", event.Err)
		o.logger.Error("service_use_case", kv...)
		return
	}
	o.logger.Info("service_use_case", kv...)
}
