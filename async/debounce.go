package async

import (
	"context"
	"time"
)

// Debounce collapses a burst of events arriving on eventsChan into a single
// call to handler, fired interval after the most recently received event.
// It blocks until ctx is canceled, so callers run it in its own goroutine.
func Debounce(ctx context.Context, interval time.Duration, eventsChan <-chan interface{}, handler func(event interface{})) {
	var lastEvent interface{}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eventsChan:
			lastEvent = event
			if !timer.Stop() && armed {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(interval)
			armed = true
		case <-timer.C:
			if armed {
				handler(lastEvent)
				armed = false
			}
		}
	}
}
