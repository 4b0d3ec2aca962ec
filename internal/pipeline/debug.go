// Pipeline-specific debugging and performance monitoring
package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// maxHistory bounds the retained operations and events.
const maxHistory = 256

// Debugger records pipeline operations and timing.
type Debugger struct {
	mu      sync.Mutex
	logger  *logrus.Logger
	enabled bool

	operations []Operation
	events     []Event

	processingTimes []time.Duration
	stepTimes       []time.Duration

	currentMode         string
	currentLayerCount   int
	lastProcessingStart time.Time
}

// Operation tracks individual pipeline operations
type Operation struct {
	Timestamp time.Time
	Operation string // "add_step", "add_layer", "process_step", "process_run"
	Success   bool
	Duration  time.Duration
	Details   map[string]interface{}
	Error     string
}

// Event tracks processing flow events
type Event struct {
	Timestamp time.Time
	Event     string // "mode_change", "processing_start", "processing_complete", "clear_all"
	Mode      string
	Details   map[string]interface{}
}

func NewDebugger(logger *logrus.Logger) *Debugger {
	return &Debugger{
		logger:      logger,
		enabled:     true,
		currentMode: "sequential",
	}
}

// SetEnabled turns recording on or off.
func (d *Debugger) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

func (d *Debugger) LogOperation(operation string, success bool, duration time.Duration, details map[string]interface{}, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return
	}

	errorStr := ""
	if err != nil {
		errorStr = err.Error()
	}
	d.operations = appendBounded(d.operations, Operation{
		Timestamp: time.Now(),
		Operation: operation,
		Success:   success,
		Duration:  duration,
		Details:   details,
		Error:     errorStr,
	})

	switch operation {
	case "process_run":
		d.processingTimes = appendBounded(d.processingTimes, duration)
	case "process_step":
		d.stepTimes = appendBounded(d.stepTimes, duration)
	}

	entry := d.logger.WithFields(logrus.Fields{
		"operation":   operation,
		"success":     success,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("Pipeline operation")
}

func (d *Debugger) LogEvent(event, mode string, details map[string]interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logEventLocked(event, mode, details)
}

func (d *Debugger) logEventLocked(event, mode string, details map[string]interface{}) {
	if !d.enabled {
		return
	}
	d.events = appendBounded(d.events, Event{
		Timestamp: time.Now(),
		Event:     event,
		Mode:      mode,
		Details:   details,
	})
	d.currentMode = mode

	d.logger.WithFields(logrus.Fields{
		"event": event,
		"mode":  mode,
	}).Debug("Pipeline event")
}

func (d *Debugger) LogLayerAddition(layerID, algorithm string, params map[string]interface{}, success bool, duration time.Duration, err error) {
	details := map[string]interface{}{
		"layer_id":  layerID,
		"algorithm": algorithm,
		"params":    params,
	}
	d.LogOperation("add_layer", success, duration, details, err)
}

func (d *Debugger) LogModeChange(oldMode, newMode string, layerCount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentLayerCount = layerCount
	d.logEventLocked("mode_change", newMode, map[string]interface{}{
		"old_mode":    oldMode,
		"layer_count": layerCount,
	})
}

func (d *Debugger) LogProcessingStart(mode string, layerCount int, inputSize string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastProcessingStart = time.Now()
	d.currentLayerCount = layerCount
	d.logEventLocked("processing_start", mode, map[string]interface{}{
		"layer_count": layerCount,
		"input_size":  inputSize,
	})
}

func (d *Debugger) LogProcessingComplete(mode string, success bool, outputSize string, metrics map[string]float64) {
	d.mu.Lock()
	duration := time.Since(d.lastProcessingStart)
	d.mu.Unlock()

	details := map[string]interface{}{
		"output_size": outputSize,
		"metrics":     len(metrics),
	}
	var err error
	if !success {
		err = fmt.Errorf("processing failed")
	}
	d.LogOperation("process_run", success, duration, details, err)
	d.LogEvent("processing_complete", mode, details)
}

// Operations returns a copy of the retained operations, oldest first.
func (d *Debugger) Operations() []Operation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Operation, len(d.operations))
	copy(out, d.operations)
	return out
}

// Events returns a copy of the retained events, oldest first.
func (d *Debugger) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// WriteStatus prints a human-readable summary to w.
func (d *Debugger) WriteStatus(w io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return
	}

	fmt.Fprintln(w, "=== PIPELINE DEBUG STATUS ===")
	fmt.Fprintf(w, "Current Mode: %s\n", d.currentMode)
	fmt.Fprintf(w, "Current Layer Count: %d\n", d.currentLayerCount)
	fmt.Fprintf(w, "Total Operations: %d\n", len(d.operations))
	fmt.Fprintf(w, "Total Events: %d\n", len(d.events))
	if len(d.processingTimes) > 0 {
		fmt.Fprintf(w, "Average Processing Time: %v\n", averageDuration(d.processingTimes))
	}
	if len(d.stepTimes) > 0 {
		fmt.Fprintf(w, "Average Step Time: %v\n", averageDuration(d.stepTimes))
	}

	fmt.Fprintln(w, "Recent Operations:")
	for _, op := range d.operations[max(0, len(d.operations)-5):] {
		status := "SUCCESS"
		if !op.Success {
			status = "FAILED"
		}
		fmt.Fprintf(w, "  [%s] %s - %s (%v)\n", op.Timestamp.Format("15:04:05.000"), op.Operation, status, op.Duration)
	}
}

func (d *Debugger) GetStats() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return nil
	}

	stats := map[string]interface{}{
		"current_mode":        d.currentMode,
		"current_layer_count": d.currentLayerCount,
		"total_operations":    len(d.operations),
		"total_events":        len(d.events),
	}

	successCount := 0
	for _, op := range d.operations {
		if op.Success {
			successCount++
		}
	}
	if len(d.operations) > 0 {
		stats["success_rate"] = float64(successCount) / float64(len(d.operations))
	}
	if len(d.processingTimes) > 0 {
		stats["avg_processing_time"] = averageDuration(d.processingTimes)
	}
	if len(d.stepTimes) > 0 {
		stats["avg_step_time"] = averageDuration(d.stepTimes)
	}
	return stats
}

func averageDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

func appendBounded[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > maxHistory {
		s = s[len(s)-maxHistory:]
	}
	return s
}
