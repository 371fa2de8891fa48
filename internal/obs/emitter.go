package obs

import "go.uber.org/zap"

// Emitter reports named business events to the observability
// collaborator. Implementations are fire-and-forget; the core never
// depends on delivery.
type Emitter interface {
	Emit(name string, attrs map[string]any)
}

// ZapEmitter writes each event as a structured log line.
type ZapEmitter struct {
	log *zap.Logger
}

func NewZapEmitter(log *zap.Logger) *ZapEmitter {
	return &ZapEmitter{log: log.Named("events")}
}

func (e *ZapEmitter) Emit(name string, attrs map[string]any) {
	fields := make([]zap.Field, 0, len(attrs))
	for k, v := range attrs {
		fields = append(fields, zap.Any(k, v))
	}
	e.log.Info(name, fields...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(string, map[string]any) {}
