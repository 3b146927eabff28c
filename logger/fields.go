package logger

import (
	"time"
)

// Standard field keys used across taskbridge packages.
const (
	FieldService    = "service"
	FieldComponent  = "component"
	FieldEvent      = "event"
	FieldPhase      = "phase"
	FieldApp        = "app"
	FieldRef        = "ref"
	FieldCapability = "capability"
	FieldTaskID     = "task_id"
	FieldTaskName   = "task"
	FieldRequestID  = "request_id"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("phase", "startup", "count", 2))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a phase that failed.
func ErrorFields(phase string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldPhase: phase,
		FieldError: err.Error(),
	}
}

// DurationFields creates fields for a timed phase.
func DurationFields(phase string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldPhase:    phase,
		FieldDuration: d.Milliseconds(),
	}
}
