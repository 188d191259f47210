package racingline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/psuracing/racingline-service-go/pkg/model"
)

var ErrInvalidTrack = errors.New("invalid track document")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type (
	// document mirrors the on-disk layout. Missing fields stay unset so they
	// can be told apart from zero values during validation.
	//
	//nolint:tagliatelle // file format shared with the dashboard
	document struct {
		RacingLine []pointDoc   `json:"racing_line"`
		Segments   []segmentDoc `json:"segments"`
	}
	//nolint:tagliatelle // file format shared with the dashboard
	pointDoc struct {
		Lat         omit.Val[float64] `json:"lat"`
		Lon         omit.Val[float64] `json:"lon"`
		TargetSpeed omit.Val[float64] `json:"target_speed"`
		SegmentID   omit.Val[int]     `json:"segment_id"`
		SegmentName omit.Val[string]  `json:"segment_name"`
	}
	//nolint:tagliatelle // file format shared with the dashboard
	segmentDoc struct {
		ID          omit.Val[int]     `json:"id"`
		Name        omit.Val[string]  `json:"name"`
		TargetSpeed omit.Val[float64] `json:"target_speed"`
		Efficiency  omit.Val[float64] `json:"efficiency"`
	}
)

// Decode reads a track document and validates it.
// Any malformed entry rejects the whole document.
func Decode(r io.Reader, format Format) (*model.Track, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == FormatYAML {
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrack, err)
	}
	return doc.toTrack()
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrack, err)
	}
	return json.Marshal(raw)
}

//nolint:cyclop,funlen // validation of each field
func (d *document) toTrack() (*model.Track, error) {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(d.Segments) == 0 {
		invalid("no segments")
	}
	segments := make([]model.Segment, 0, len(d.Segments))
	for i, s := range d.Segments {
		id, okID := s.ID.Get()
		name, okName := s.Name.Get()
		if !okID {
			invalid("segment %d: missing id", i)
		}
		if !okName || name == "" {
			invalid("segment %d: missing name", i)
		}
		segments = append(segments, model.Segment{
			ID:          id,
			Name:        name,
			TargetSpeed: s.TargetSpeed.GetOr(0),
			Efficiency:  s.Efficiency.GetOr(0),
		})
	}
	if dups := lo.FindDuplicatesBy(segments, func(s model.Segment) int { return s.ID }); len(dups) > 0 {
		invalid("duplicate segment ids %v", lo.Map(dups, func(s model.Segment, _ int) int { return s.ID }))
	}
	byID := lo.KeyBy(segments, func(s model.Segment) int { return s.ID })

	if len(d.RacingLine) == 0 {
		invalid("empty racing line")
	}
	points := make([]model.TrackPoint, 0, len(d.RacingLine))
	for i, p := range d.RacingLine {
		lat, okLat := p.Lat.Get()
		lon, okLon := p.Lon.Get()
		speed, okSpeed := p.TargetSpeed.Get()
		segID, okSeg := p.SegmentID.Get()
		switch {
		case !okLat || !okLon:
			invalid("point %d: missing position", i)
		case lat < -90 || lat > 90 || lon < -180 || lon > 180:
			invalid("point %d: position out of range (%v,%v)", i, lat, lon)
		}
		if !okSpeed {
			invalid("point %d: missing target_speed", i)
		}
		seg, known := byID[segID]
		if !okSeg {
			invalid("point %d: missing segment_id", i)
		} else if !known {
			invalid("point %d: unknown segment_id %d", i, segID)
		}
		points = append(points, model.TrackPoint{
			Lat:         lat,
			Lon:         lon,
			TargetSpeed: speed,
			SegmentID:   segID,
			SegmentName: p.SegmentName.GetOr(seg.Name),
		})
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrack, errors.Join(errs...))
	}
	return &model.Track{Points: points, Segments: segments}, nil
}

// Encode writes the track as json document.
func Encode(w io.Writer, track *model.Track) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(track)
}
