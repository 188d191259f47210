// Package overlay exposes the overlay composer over http.
package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/camera"
	"github.com/psuracing/racingline-service-go/pkg/model"
)

const (
	Path        = "/api/racing_line"
	ServiceName = "racing-line-overlay"
)

var errInvalidFrame = errors.New("camera_width and camera_height must be positive")

type (
	//nolint:tagliatelle // wire format used by the dashboard
	request struct {
		Latitude     omit.Val[float64] `json:"latitude"`
		Longitude    omit.Val[float64] `json:"longitude"`
		Heading      omit.Val[float64] `json:"heading"`
		Speed        omit.Val[float64] `json:"speed"`
		CameraWidth  omit.Val[int]     `json:"camera_width"`
		CameraHeight omit.Val[int]     `json:"camera_height"`
	}
	//nolint:tagliatelle // wire format used by the dashboard
	status struct {
		Service          string `json:"service"`
		RacingLinePoints int    `json:"racing_line_points"`
		Segments         int    `json:"segments"`
		Usage            string `json:"usage"`
	}
	errorResponse struct {
		Error string `json:"error"`
	}
)

func (r *request) pose() model.CarPose {
	return model.CarPose{
		Lat:     r.Latitude.GetOr(0),
		Lon:     r.Longitude.GetOr(0),
		Heading: r.Heading.GetOr(0),
		Speed:   r.Speed.GetOr(0),
	}
}

func (r *request) params() camera.Params {
	def := camera.DefaultParams()
	return camera.Params{
		Width:  r.CameraWidth.GetOr(def.Width),
		Height: r.CameraHeight.GetOr(def.Height),
	}
}

type Composer interface {
	Compose(ctx context.Context, pose model.CarPose, params camera.Params) (*model.OverlayResult, error)
	Track(ctx context.Context) (*model.Track, error)
}

type (
	Handler struct {
		composer Composer
		l        *log.Logger
		requests metric.Int64Counter
		points   metric.Int64Histogram
	}
	Option func(*Handler)
)

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) {
		h.l = l
	}
}

func NewHandler(c Composer, opts ...Option) *Handler {
	ret := &Handler{
		composer: c,
		l:        log.Default().Named("http"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	meter := otel.Meter("rls.endpoints.overlay")
	var err error
	if ret.requests, err = meter.Int64Counter("rls.overlay.requests",
		metric.WithDescription("overlay requests by method and status"),
		metric.WithUnit("{request}")); err != nil {
		ret.l.Warn("failed to register metric", log.ErrorField(err))
	}
	if ret.points, err = meter.Int64Histogram("rls.overlay.points",
		metric.WithDescription("visible racing line points per overlay"),
		metric.WithUnit("{point}")); err != nil {
		ret.l.Warn("failed to register metric", log.ErrorField(err))
	}
	return ret
}

// Register adds the overlay routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+Path, h.handleCompose)
	mux.HandleFunc("GET "+Path, h.handleStatus)
	mux.HandleFunc("OPTIONS "+Path, h.handleOptions)
}

// NewCORS allows any origin to call the overlay api.
func NewCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
	})
}

func (h *Handler) handleCompose(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r.Body)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	params := req.params()
	if !params.Valid() {
		h.fail(w, r, http.StatusBadRequest, errInvalidFrame)
		return
	}
	res, err := h.composer.Compose(r.Context(), req.pose(), params)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if h.points != nil {
		h.points.Record(r.Context(), int64(len(res.OverlayPoints)))
	}
	h.write(w, r, http.StatusOK, res)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	track, err := h.composer.Track(r.Context())
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	h.write(w, r, http.StatusOK, status{
		Service:          ServiceName,
		RacingLinePoints: track.Len(),
		Segments:         len(track.Segments),
		Usage: fmt.Sprintf("POST %s with latitude, longitude, heading, speed, "+
			"camera_width, camera_height", Path),
	})
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
	h.count(r, http.StatusOK)
}

func decodeRequest(body io.Reader) (*request, error) {
	var req request
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return &req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		h.l.Error("overlay request failed", log.ErrorField(err))
	} else {
		h.l.Debug("bad overlay request", log.ErrorField(err))
	}
	h.write(w, r, code, errorResponse{Error: err.Error()})
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.l.Warn("could not write response", log.ErrorField(err))
	}
	h.count(r, code)
}

func (h *Handler) count(r *http.Request, code int) {
	if h.requests == nil {
		return
	}
	h.requests.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("method", r.Method),
		attribute.Int("status", code)))
}
