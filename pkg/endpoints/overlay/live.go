package overlay

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/utils/broadcast"
)

const LivePath = Path + "/live"

// LiveHandler streams overlays computed from live messages as server-sent
// events.
type LiveHandler struct {
	source broadcast.BroadcastServer[*model.LiveOverlay]
	l      *log.Logger
}

func NewLiveHandler(src broadcast.BroadcastServer[*model.LiveOverlay], l *log.Logger) *LiveHandler {
	return &LiveHandler{source: src, l: l}
}

func (h *LiveHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET "+LivePath, h)
}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	ch := h.source.Subscribe()
	defer h.source.CancelSubscription(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	h.l.Debug("live client connected", log.String("remote", r.RemoteAddr))
	for {
		select {
		case <-r.Context().Done():
			h.l.Debug("live client disconnected", log.String("remote", r.RemoteAddr))
			return
		case o, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(o)
			if err != nil {
				h.l.Warn("could not encode overlay", log.ErrorField(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
