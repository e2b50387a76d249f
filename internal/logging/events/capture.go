package events

import (
	"time"

	"github.com/atomicstack/tab-popup-switcher/internal/logging"
)

type CaptureTracer struct{}

type captureStage string

const (
	StageCapture captureStage = "capture"
	StageResize  captureStage = "resize"
	StageStore   captureStage = "store"
)

var Capture = CaptureTracer{}

func (CaptureTracer) Skip(id int64, url, reason string) {
	logging.Trace("capture.skip", map[string]interface{}{"tab": id, "url": url, "reason": reason})
}

func (CaptureTracer) Attempt(id int64, attempt int) {
	logging.Trace("capture.attempt", map[string]interface{}{"tab": id, "attempt": attempt})
}

func (CaptureTracer) Retry(id int64, attempt int, delay time.Duration, err error) {
	logging.Trace("capture.retry", map[string]interface{}{
		"tab":     id,
		"attempt": attempt,
		"delayMs": delay.Milliseconds(),
		"error":   errString(err),
	})
}

func (CaptureTracer) Abandon(id int64, attempts int, err error) {
	logging.Trace("capture.abandon", map[string]interface{}{"tab": id, "attempts": attempts, "error": errString(err)})
}

func (CaptureTracer) Failure(id int64, stage captureStage, err error) {
	logging.Trace("capture.failure", map[string]interface{}{"tab": id, "stage": string(stage), "error": errString(err)})
}

func (CaptureTracer) Cancelled(id int64) {
	logging.Trace("capture.cancel", map[string]interface{}{"tab": id})
}

func (CaptureTracer) Stored(id int64, lastActive int64, size int) {
	logging.Trace("capture.stored", map[string]interface{}{"tab": id, "lastActive": lastActive, "bytes": size})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
