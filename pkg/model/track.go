package model

// TrackPoint is a single point of the ideal racing line.
type TrackPoint struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	TargetSpeed float64 `json:"target_speed"`
	SegmentID   int     `json:"segment_id"`
	SegmentName string  `json:"segment_name"`
}

// Segment holds the aggregated data of one arc of the track.
type Segment struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	TargetSpeed float64 `json:"target_speed"`
	Efficiency  float64 `json:"efficiency"`
}

// Track is the closed loop racing line together with its segments.
// The order of Points is the lap direction. The successor of the last point
// is the first point.
// A Track is treated as read-only once it was handed out by a provider.
type Track struct {
	Points   []TrackPoint `json:"racing_line"`
	Segments []Segment    `json:"segments"`
}

func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

// At returns the point at index i. The index wraps around the loop.
func (t *Track) At(i int) TrackPoint {
	n := len(t.Points)
	return t.Points[((i%n)+n)%n]
}

func (t *Track) SegmentByID(id int) (Segment, bool) {
	for _, s := range t.Segments {
		if s.ID == id {
			return s, true
		}
	}
	return Segment{}, false
}
