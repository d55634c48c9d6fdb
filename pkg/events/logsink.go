package events

import (
	"go.uber.org/zap"
)

// LogSink writes one structured log line per event.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

func (l *LogSink) OnEvent(ev Event) {
	switch ev.Outcome {
	case Full:
		l.log.Warnw("Address table full, could not insert address", "address", ev.Address.String())
	case Inserted, Updated, Deleted, Timeout:
		l.log.Infow(
			"Address table event",
			"slot", ev.Slot,
			"event", ev.Outcome.String(),
			"address", ev.Address.String(),
		)
	default:
		l.log.Debugw("Address table event", "slot", ev.Slot, "event", ev.Outcome.String())
	}
}
