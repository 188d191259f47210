package livefeed

import (
	"encoding/json"

	"github.com/aarondl/opt/omit"
)

type (
	//nolint:tagliatelle // wire format used by the dashboard
	telemetryMsg struct {
		Latitude  float64           `json:"latitude"`
		Longitude float64           `json:"longitude"`
		Speed     float64           `json:"speed"`
		Heading   omit.Val[float64] `json:"heading"`
	}
	//nolint:tagliatelle // wire format used by the dashboard
	gpsMsg struct {
		Latitude  float64           `json:"latitude"`
		Longitude float64           `json:"longitude"`
		SpeedKmh  float64           `json:"speed_kmh"`
		Heading   omit.Val[float64] `json:"heading"`
	}
)

// decodeFunc extracts the position part of a message payload.
type decodeFunc func(data []byte) (sample, error)

func decodeTelemetry(data []byte) (sample, error) {
	var m telemetryMsg
	if err := json.Unmarshal(data, &m); err != nil {
		return sample{}, err
	}
	return sample{lat: m.Latitude, lon: m.Longitude, speed: m.Speed, heading: m.Heading}, nil
}

func decodeGPS(data []byte) (sample, error) {
	var m gpsMsg
	if err := json.Unmarshal(data, &m); err != nil {
		return sample{}, err
	}
	return sample{lat: m.Latitude, lon: m.Longitude, speed: m.SpeedKmh, heading: m.Heading}, nil
}
