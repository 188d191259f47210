package model

// TelemetryPacket is the payload the dashboard receives on the telemetry
// subject (live from the car or replayed from a recorded attempt).
//
//nolint:tagliatelle // wire format used by the dashboard
type TelemetryPacket struct {
	Voltage    float64 `json:"voltage"`
	Current    float64 `json:"current"`
	Power      float64 `json:"power"`
	Speed      float64 `json:"speed"`
	RPM        float64 `json:"rpm"`
	DistanceKm float64 `json:"distance_km"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Heading    float64 `json:"heading,omitempty"`
	Timestamp  float64 `json:"timestamp"`
	Lap        int     `json:"lap"`
}

// GPSState is the payload published by the raspberry pi gps streamer.
//
//nolint:tagliatelle // wire format used by the dashboard
type GPSState struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	SpeedKmh     float64 `json:"speed_kmh"`
	Heading      float64 `json:"heading"`
	Altitude     float64 `json:"altitude"`
	Satellites   int     `json:"satellites"`
	FixQuality   int     `json:"fix_quality"`
	GpsTimestamp *string `json:"gps_timestamp"`
	PiTimestamp  string  `json:"pi_timestamp"`
	Source       string  `json:"source,omitempty"`
}

// LiveOverlay is published for every overlay computed from a live message.
type LiveOverlay struct {
	Source string `json:"source"`
	OverlayResult
}
