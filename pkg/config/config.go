package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	NatsURL           string // URL of the NATS server (empty disables pub/sub)
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules applied to all loggers
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry
	ProfilingPort     int    // port for profiling
	ServerAddr        string // listen addr for the overlay http server
	TrackFile         string // path to the racing line document
	WatchTrackFile    bool   // reload the racing line when the document changes
	TelemetrySubject  string // subject carrying replayed dashboard telemetry
	PiGpsSubject      string // subject carrying gps data from the raspberry pi
	OverlaySubject    string // subject receiving computed overlays
	FrameWidth        int    // camera frame width used for live overlays
	FrameHeight       int    // camera frame height used for live overlays
)

// CameraConfig holds the fixed mounting and optics of the onboard camera.
// These are process wide and not part of a single overlay request.
type CameraConfig struct {
	HeightM     float64 // mount height above ground
	FovH        float64 // horizontal field of view in degrees
	FovV        float64 // vertical field of view in degrees
	LookaheadM  float64 // max forward distance of projected points
	MinForwardM float64 // points closer than this are not projected
}

// OverlayConfig holds the tuning values of the overlay composer.
type OverlayConfig struct {
	WindowSize       int     // max number of racing line points per overlay
	OnTrackThreshold float64 // max deviation in meters to be considered on track
}

func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		HeightM:     0.8,
		FovH:        118,
		FovV:        69,
		LookaheadM:  40,
		MinForwardM: 0.5,
	}
}

func DefaultOverlayConfig() OverlayConfig {
	return OverlayConfig{
		WindowSize:       60,
		OnTrackThreshold: 10.0,
	}
}

var (
	Camera  = DefaultCameraConfig()
	Overlay = DefaultOverlayConfig()
)
