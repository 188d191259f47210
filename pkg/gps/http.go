package gps

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/psuracing/racingline-service-go/pkg/gpsstate"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

// ConnStatus reports the state of the broker connection.
type ConnStatus interface {
	IsConnected() bool
	ConnectedUrl() string
}

type (
	natsStatus struct {
		Connected bool   `json:"connected"`
		URL       string `json:"url"`
	}
	//nolint:tagliatelle // wire format used by the dashboard
	status struct {
		GPS        model.GPSState `json:"gps"`
		LastFix    *time.Time     `json:"last_fix"`
		SerialPort string         `json:"serial_port"`
		SerialOpen bool           `json:"serial_open"`
		Nats       natsStatus     `json:"nats"`
	}
)

type Handler struct {
	state      *gpsstate.State
	conn       ConnStatus
	serialPort string
	serialOpen bool
}

// NewHandler serves the gps state. conn may be nil if no broker is used.
func NewHandler(st *gpsstate.State, conn ConnStatus, serialPort string, serialOpen bool) *Handler {
	return &Handler{state: st, conn: conn, serialPort: serialPort, serialOpen: serialOpen}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /gps", h.handleGPS)
	mux.HandleFunc("GET /status", h.handleStatus)
}

func (h *Handler) handleGPS(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.state.Snapshot())
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	ret := status{
		GPS:        h.state.Snapshot(),
		SerialPort: h.serialPort,
		SerialOpen: h.serialOpen,
	}
	if ts := h.state.LastUpdate(); !ts.IsZero() {
		ret.LastFix = &ts
	}
	if h.conn != nil {
		ret.Nats = natsStatus{Connected: h.conn.IsConnected(), URL: h.conn.ConnectedUrl()}
	}
	writeJSON(w, ret)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck // nothing left to report to the client
	json.NewEncoder(w).Encode(v)
}
