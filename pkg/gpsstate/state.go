// Package gpsstate keeps the latest gps fix shared between the serial reader
// and its consumers.
package gpsstate

import (
	"sync"
	"time"

	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/nmea"
)

const Source = "pi_gps"

type (
	State struct {
		mutex      sync.Mutex
		lat        float64
		lon        float64
		speedKmh   float64
		heading    float64
		altitude   float64
		satellites int
		fixQuality int
		gpsTime    *time.Time
		lastUpdate time.Time
		now        func() time.Time
	}
	Option func(*State)
)

// WithClock replaces time.Now, used for the gps date and the pi timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

func New(opts ...Option) *State {
	ret := &State{now: time.Now}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Apply merges the set fields of a sentence into the state.
func (s *State) Apply(sn *nmea.Sentence) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	switch sn.Kind {
	case nmea.KindGGA:
		if tod, ok := sn.TimeOfDay.Get(); ok {
			// the fix carries no date, today (UTC) is assumed
			y, m, d := s.now().UTC().Date()
			ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(tod)
			s.gpsTime = &ts
		}
		s.lat = sn.Lat.GetOr(s.lat)
		s.lon = sn.Lon.GetOr(s.lon)
		s.fixQuality = sn.FixQuality.GetOr(s.fixQuality)
		s.satellites = sn.Satellites.GetOr(s.satellites)
		s.altitude = sn.Altitude.GetOr(s.altitude)
		s.lastUpdate = s.now()
	case nmea.KindRMC, nmea.KindVTG:
		s.speedKmh = sn.SpeedKmh.GetOr(s.speedKmh)
		s.heading = sn.Course.GetOr(s.heading)
	}
}

// Snapshot returns a copy of the current state stamped with the pi time.
func (s *State) Snapshot() model.GPSState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ret := model.GPSState{
		Latitude:    s.lat,
		Longitude:   s.lon,
		SpeedKmh:    s.speedKmh,
		Heading:     s.heading,
		Altitude:    s.altitude,
		Satellites:  s.satellites,
		FixQuality:  s.fixQuality,
		PiTimestamp: s.now().UTC().Format(time.RFC3339Nano),
		Source:      Source,
	}
	if s.gpsTime != nil {
		ts := s.gpsTime.Format(time.RFC3339Nano)
		ret.GpsTimestamp = &ts
	}
	return ret
}

// LastUpdate returns the time of the last applied fix. It is zero until the
// first fix arrives.
func (s *State) LastUpdate() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastUpdate
}
