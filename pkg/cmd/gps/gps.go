package gps

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/cmd/util"
	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/gps"
	"github.com/psuracing/racingline-service-go/pkg/gpsstate"
)

var (
	serialPort string
	baudRate   int
	addr       string
	interval   time.Duration
)

func NewGpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gps",
		Short: "streams the raspberry pi gps position",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startStreamer()
		},
	}
	cmd.Flags().StringVar(&serialPort, "serial-port", gps.DefaultPort,
		"serial device of the gps module")
	cmd.Flags().IntVar(&baudRate, "baud", gps.DefaultBaud,
		"baud rate of the gps module")
	cmd.Flags().StringVarP(&addr, "addr", "a", "0.0.0.0:5000",
		"http listen address for gps status")
	cmd.Flags().DurationVar(&interval, "interval", gps.DefaultInterval,
		"publish interval")
	cmd.Flags().StringVar(&config.PiGpsSubject, "subject", gps.DefaultSubject,
		"subject to publish the gps state to")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	return cmd
}

//nolint:funlen // by design
func startStreamer() error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	util.StartProfiling()
	util.WaitForRequiredServices()

	ctx, cancel := util.SignalContext()
	defer cancel()

	st := gpsstate.New()
	wg := sync.WaitGroup{}
	gpsLogger := log.Default().Named("gps")

	port, err := gps.OpenSerial(serialPort, baudRate)
	serialOpen := err == nil
	if err != nil {
		log.Warn("Could not open gps serial port, running without gps",
			log.String("port", serialPort), log.ErrorField(err))
	} else {
		log.Info("Opened gps serial port",
			log.String("port", serialPort), log.Int("baud", baudRate))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gps.ReadSentences(ctx, port, st, gpsLogger); err != nil && ctx.Err() == nil {
				log.Error("gps serial reader stopped", log.ErrorField(err))
			}
		}()
		go func() {
			<-ctx.Done()
			port.Close()
		}()
	}

	conn, err := util.ConnectNats("rls-gps")
	if err != nil {
		log.Warn("Could not connect to nats, gps is not published", log.ErrorField(err))
	}
	var status gps.ConnStatus
	if conn != nil {
		defer conn.Close()
		status = conn
		streamer := gps.NewStreamer(conn, st,
			gps.WithSubject(config.PiGpsSubject),
			gps.WithInterval(interval),
			gps.WithLogger(gpsLogger.Named("streamer")))
		wg.Add(1)
		go func() {
			defer wg.Done()
			streamer.Run(ctx)
		}()
	}

	mux := http.NewServeMux()
	gps.NewHandler(st, status, serialPort, serialOpen).Register(mux)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", log.ErrorField(err))
		}
	}()

	log.Info("Starting gps http server", log.String("addr", addr))
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("gps http server stopped", log.ErrorField(err))
		cancel()
	} else {
		err = nil
	}
	wg.Wait()
	log.Info("gps streamer terminated")
	return err
}
