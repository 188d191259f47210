package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/camera"
	"github.com/psuracing/racingline-service-go/pkg/cmd/util"
	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/endpoints/overlay"
	"github.com/psuracing/racingline-service-go/pkg/livefeed"
	"github.com/psuracing/racingline-service-go/pkg/model"
	composer "github.com/psuracing/racingline-service-go/pkg/overlay"
	"github.com/psuracing/racingline-service-go/pkg/racingline"
	"github.com/psuracing/racingline-service-go/pkg/utils/broadcast"
)

const liveBuffer = 10

//nolint:funlen // flag definitions
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the racing line overlay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"addr",
		"a",
		"0.0.0.0:5001",
		"overlay server listen address")
	cmd.Flags().StringVar(&config.TrackFile,
		"track-file",
		"",
		"racing line document (json or yaml). The built-in track is used if empty")
	cmd.Flags().BoolVar(&config.WatchTrackFile,
		"watch-track-file",
		false,
		"reload the racing line when the track file changes")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().StringVar(&config.TelemetrySubject,
		"telemetry-subject",
		livefeed.DefaultTelemetrySubject,
		"subject carrying car telemetry (empty disables)")
	cmd.Flags().StringVar(&config.PiGpsSubject,
		"gps-subject",
		livefeed.DefaultGPSSubject,
		"subject carrying raspberry pi gps data (empty disables)")
	cmd.Flags().StringVar(&config.OverlaySubject,
		"overlay-subject",
		livefeed.DefaultOverlaySubject,
		"subject receiving live overlays")
	cmd.Flags().IntVar(&config.FrameWidth,
		"frame-width",
		camera.DefaultParams().Width,
		"camera frame width used for live overlays")
	cmd.Flags().IntVar(&config.FrameHeight,
		"frame-height",
		camera.DefaultParams().Height,
		"camera frame height used for live overlays")
	cmd.Flags().Float64Var(&config.Camera.HeightM,
		"camera-height",
		config.Camera.HeightM,
		"camera mount height in meters")
	cmd.Flags().Float64Var(&config.Camera.FovH,
		"fov-h",
		config.Camera.FovH,
		"horizontal field of view in degrees")
	cmd.Flags().Float64Var(&config.Camera.FovV,
		"fov-v",
		config.Camera.FovV,
		"vertical field of view in degrees")
	cmd.Flags().Float64Var(&config.Camera.LookaheadM,
		"lookahead",
		config.Camera.LookaheadM,
		"max distance in meters of projected racing line points")
	cmd.Flags().IntVar(&config.Overlay.WindowSize,
		"window-size",
		config.Overlay.WindowSize,
		"max number of racing line points per overlay")
	cmd.Flags().Float64Var(&config.Overlay.OnTrackThreshold,
		"on-track-threshold",
		config.Overlay.OnTrackThreshold,
		"max deviation in meters to be considered on track")
	return cmd
}

//nolint:funlen,cyclop // by design
func startServer() error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}

	log.Debug("Config:",
		log.String("addr", config.ServerAddr),
		log.String("trackFile", config.TrackFile),
		log.String("natsUrl", config.NatsURL),
		log.Any("camera", config.Camera),
		log.Any("overlay", config.Overlay),
	)

	util.StartProfiling()
	util.WaitForRequiredServices()
	telemetry := util.SetupTelemetry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracks := racingline.NewFileProvider(config.TrackFile,
		racingline.WithLogger(log.Default().Named("racingline")))
	if config.WatchTrackFile && config.TrackFile != "" {
		if err := racingline.Watch(ctx, tracks, config.TrackFile,
			log.Default().Named("racingline.watch")); err != nil {
			log.Warn("Could not watch track file", log.ErrorField(err))
		}
	}
	c := composer.NewComposer(
		composer.WithTrackProvider(tracks),
		composer.WithProjector(camera.NewProjector(config.Camera)),
		composer.WithConfig(config.Overlay),
		composer.WithLogger(log.Default().Named("overlay")),
	)
	if _, err := c.Track(ctx); err != nil {
		log.Warn("Could not preload racing line", log.ErrorField(err))
	}

	mux := http.NewServeMux()
	overlay.NewHandler(c, overlay.WithLogger(log.Default().Named("endpoint"))).Register(mux)

	liveSource := make(chan *model.LiveOverlay, liveBuffer)
	live := broadcast.NewBroadcastServer("overlay", liveSource,
		broadcast.WithLogger[*model.LiveOverlay](log.Default().Named("broadcast")))
	overlay.NewLiveHandler(live, log.Default().Named("endpoint.live")).Register(mux)

	var bridge *livefeed.Bridge
	conn, err := util.ConnectNats("rls-server")
	if err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}
	if conn != nil {
		bridge = livefeed.NewBridge(conn, c,
			livefeed.WithContext(ctx),
			livefeed.WithLogger(log.Default().Named("livefeed")),
			livefeed.WithParams(camera.Params{Width: config.FrameWidth, Height: config.FrameHeight}),
			livefeed.WithTelemetrySubject(config.TelemetrySubject),
			livefeed.WithGPSSubject(config.PiGpsSubject),
			livefeed.WithOverlaySubject(config.OverlaySubject),
			livefeed.WithSink(liveSource),
		)
		if err := bridge.Start(); err != nil {
			log.Error("live feed could not be started", log.ErrorField(err))
			conn.Close()
			return err
		}
	} else {
		log.Info("No nats url configured, live feed disabled")
	}

	server := &http.Server{
		Addr:              config.ServerAddr,
		Handler:           h2c.NewHandler(overlay.NewCORS().Handler(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting overlay server", log.String("addr", config.ServerAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	log.Info("Server started")
	util.SetupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case v := <-sigChan:
		log.Debug("Got signal ", log.Any("signal", v))
	case err = <-errChan:
		log.Error("server could not be started", log.ErrorField(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if bridge != nil {
		bridge.Close()
	}
	if conn != nil {
		conn.Close()
	}
	live.Close()
	cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("Server shutdown", log.ErrorField(shutdownErr))
	}
	if telemetry != nil {
		telemetry.Shutdown()
	}

	log.Info("Server terminated")
	return err
}
