package events

import (
	"context"

	"go.uber.org/zap"
)

// LogEvents writes every event from ch to logger until ch is closed or ctx
// is done.
func LogEvents(ctx context.Context, ch <-chan Event, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			logEvent(logger, ev)
		}
	}
}

func logEvent(logger *zap.Logger, ev Event) {
	fields := []zap.Field{zap.String("event", ev.EventType()), zap.String("goal_id", ev.GoalID())}
	switch e := ev.(type) {
	case GoalCreatedEvent:
		fields = append(fields, zap.String("title", e.Title))
	case GoalGeneratedEvent:
		fields = append(fields, zap.Int("tasks", e.TaskCount), zap.Duration("duration", e.Duration))
		if e.TotalEstimatedHours != nil {
			fields = append(fields, zap.Float64("total_estimated_hours", *e.TotalEstimatedHours))
		}
	case GoalFailedEvent:
		logger.Warn("planner event", append(fields, zap.Error(e.Err), zap.Duration("duration", e.Duration))...)
		return
	case TaskStatusChangedEvent:
		fields = append(fields,
			zap.String("task_id", e.TaskID),
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)))
	}
	logger.Info("planner event", fields...)
}
