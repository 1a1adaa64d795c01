package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const pingInterval = 15 * time.Second

// ServeSSE streams sub's events as server-sent events until the client goes
// away or the subscription is closed. It does not close sub.
func (d *Dispatcher) ServeSSE(w http.ResponseWriter, r *http.Request, sub *Subscription) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	// Tell the client it is subscribed so it can fetch current state.
	fmt.Fprintf(w, "event: ready\ndata: {\"subscription_id\":%q}\n\n", sub.ID.String())
	flusher.Flush()

	heartbeat := time.NewTicker(pingInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Debug("SSE client context done", "subscription_id", sub.ID, "err", ctx.Err())
			return
		case <-sub.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			raw, err := json.Marshal(ev)
			if err != nil {
				d.log.Warn("Failed to marshal change event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Table, raw)
			flusher.Flush()
		}
	}
}
