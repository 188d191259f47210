package model

import "encoding/json"

// CarPose is the live position and motion of the car for one overlay request.
type CarPose struct {
	Lat     float64
	Lon     float64
	Heading float64 // degrees, clockwise from true north
	Speed   float64
}

// Pixel is a position in camera frame coordinates.
type Pixel struct {
	X int
	Y int
}

// MarshalJSON encodes a pixel as [x,y].
func (p Pixel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Pixel) UnmarshalJSON(data []byte) error {
	var v [2]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.X, p.Y = v[0], v[1]
	return nil
}

//nolint:tagliatelle // wire format used by the dashboard
type OverlayResult struct {
	OverlayPoints []Pixel `json:"overlay_points"`
	TargetSpeed   float64 `json:"target_speed"`
	DeviationM    float64 `json:"deviation_m"`
	Segment       string  `json:"segment"`
	Efficiency    float64 `json:"efficiency"`
	OnTrack       bool    `json:"on_track"`
	SpeedDiff     float64 `json:"speed_diff"`
}
