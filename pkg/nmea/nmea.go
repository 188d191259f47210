// Package nmea parses the NMEA 0183 sentences emitted by the gps module.
// Only the fix, recommended minimum and course sentences are supported.
package nmea

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/opt/omit"
)

const KnotsToKmh = 1.852

var (
	ErrNotNMEA     = errors.New("not an nmea sentence")
	ErrUnsupported = errors.New("unsupported sentence")
	ErrMalformed   = errors.New("malformed sentence")
)

type Kind int

const (
	KindGGA Kind = iota + 1 // fix data
	KindRMC                 // recommended minimum
	KindVTG                 // course over ground
)

func (k Kind) String() string {
	switch k {
	case KindGGA:
		return "GGA"
	case KindRMC:
		return "RMC"
	case KindVTG:
		return "VTG"
	default:
		return "unknown"
	}
}

// Sentence holds the values of one sentence. Empty fields stay unset.
type Sentence struct {
	Kind       Kind
	TimeOfDay  omit.Val[time.Duration] // UTC, since midnight
	Lat        omit.Val[float64]
	Lon        omit.Val[float64]
	FixQuality omit.Val[int]
	Satellites omit.Val[int]
	Altitude   omit.Val[float64]
	SpeedKmh   omit.Val[float64]
	Course     omit.Val[float64] // degrees true
}

// Parse parses a single line. The checksum is ignored.
func Parse(line string) (*Sentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return nil, ErrNotNMEA
	}
	if i := strings.IndexByte(line, '*'); i >= 0 {
		line = line[:i]
	}
	parts := strings.Split(line, ",")
	var (
		s   *Sentence
		err error
	)
	switch parts[0] {
	case "$GPGGA", "$GNGGA":
		s, err = parseGGA(parts)
	case "$GPRMC", "$GNRMC":
		s, err = parseRMC(parts)
	case "$GPVTG", "$GNVTG":
		s, err = parseVTG(parts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, parts[0])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, parts[0], err)
	}
	return s, nil
}

func parseGGA(parts []string) (*Sentence, error) {
	if len(parts) < 10 {
		return nil, errTooShort(len(parts))
	}
	s := &Sentence{Kind: KindGGA}
	var err error
	if s.TimeOfDay, err = optional(parts[1], parseTimeOfDay); err != nil {
		return nil, err
	}
	if parts[2] != "" && parts[3] != "" {
		if s.Lat, err = coordinate(parts[2], parts[3], "S"); err != nil {
			return nil, err
		}
	}
	if parts[4] != "" && parts[5] != "" {
		if s.Lon, err = coordinate(parts[4], parts[5], "W"); err != nil {
			return nil, err
		}
	}
	if s.FixQuality, err = optional(parts[6], strconv.Atoi); err != nil {
		return nil, err
	}
	if s.Satellites, err = optional(parts[7], strconv.Atoi); err != nil {
		return nil, err
	}
	if s.Altitude, err = optional(parts[9], parseFloat); err != nil {
		return nil, err
	}
	return s, nil
}

func parseRMC(parts []string) (*Sentence, error) {
	if len(parts) < 8 {
		return nil, errTooShort(len(parts))
	}
	s := &Sentence{Kind: KindRMC}
	knots, err := optional(parts[7], parseFloat)
	if err != nil {
		return nil, err
	}
	if v, ok := knots.Get(); ok {
		s.SpeedKmh = omit.From(v * KnotsToKmh)
	}
	if len(parts) >= 9 {
		if s.Course, err = optional(parts[8], parseFloat); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseVTG(parts []string) (*Sentence, error) {
	if len(parts) < 8 {
		return nil, errTooShort(len(parts))
	}
	s := &Sentence{Kind: KindVTG}
	var err error
	if s.Course, err = optional(parts[1], parseFloat); err != nil {
		return nil, err
	}
	if s.SpeedKmh, err = optional(parts[7], parseFloat); err != nil {
		return nil, err
	}
	return s, nil
}

func errTooShort(n int) error {
	return fmt.Errorf("only %d fields", n)
}

func optional[T any](field string, parse func(string) (T, error)) (omit.Val[T], error) {
	if field == "" {
		return omit.Val[T]{}, nil
	}
	v, err := parse(field)
	if err != nil {
		return omit.Val[T]{}, err
	}
	return omit.From(v), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// coordinate converts [d]ddmm.mmmm with hemisphere into decimal degrees.
func coordinate(value, hemisphere, negative string) (omit.Val[float64], error) {
	v, err := parseFloat(value)
	if err != nil {
		return omit.Val[float64]{}, err
	}
	deg := float64(int(v / 100))
	ret := deg + (v-deg*100)/60
	if hemisphere == negative {
		ret = -ret
	}
	return omit.From(ret), nil
}

// parseTimeOfDay parses hhmmss[.sss].
func parseTimeOfDay(s string) (time.Duration, error) {
	if len(s) < 6 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(s[0:2])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(s[2:4])
	if err != nil {
		return 0, err
	}
	sec, err := parseFloat(s[4:])
	if err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)).Round(time.Microsecond), nil
}
