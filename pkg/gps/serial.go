// Package gps streams the position of the raspberry pi gps module.
package gps

import (
	"bufio"
	"context"
	"errors"
	"io"

	"go.bug.st/serial"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/gpsstate"
	"github.com/psuracing/racingline-service-go/pkg/nmea"
)

const (
	DefaultPort = "/dev/serial0"
	DefaultBaud = 9600
)

// OpenSerial opens the uart of the gps module with 8N1 framing.
func OpenSerial(port string, baud int) (serial.Port, error) {
	return serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

// ReadSentences applies every parsable line of r to st until r is exhausted
// or ctx is done. Lines that are not supported or malformed are skipped.
func ReadSentences(ctx context.Context, r io.Reader, st *gpsstate.State, l *log.Logger) error {
	scanner := bufio.NewScanner(r)
	applied := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		s, err := nmea.Parse(scanner.Text())
		if err != nil {
			if errors.Is(err, nmea.ErrMalformed) {
				l.Debug("skipping sentence", log.ErrorField(err))
			}
			continue
		}
		st.Apply(s)
		applied++
		if applied == 1 {
			l.Info("first gps sentence received", log.String("kind", s.Kind.String()))
		}
	}
	return scanner.Err()
}
