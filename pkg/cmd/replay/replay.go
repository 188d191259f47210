package replay

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/cmd/util"
	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/recording"
	"github.com/psuracing/racingline-service-go/pkg/replay"
)

var (
	speed       int
	fastForward string
	interval    time.Duration
	replayID    string
)

func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <attempt.csv>",
		Short: "replays a recorded attempt as car telemetry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayFile(args[0])
		},
	}

	cmd.Flags().IntVar(&speed, "speed", 1,
		"Replay speed (0 means: go as fast as possible)")
	cmd.Flags().StringVar(&fastForward,
		"fast-forward",
		"",
		"replay this duration with max speed")
	cmd.Flags().DurationVar(&interval,
		"interval",
		replay.DefaultInterval,
		"time between two recorded samples")
	cmd.Flags().StringVar(&config.TelemetrySubject,
		"subject",
		replay.DefaultSubject,
		"subject to publish the telemetry to")
	cmd.Flags().StringVar(&replayID,
		"replay-id",
		"",
		"id sent in the Replay-Id header (generated if empty)")
	return cmd
}

func replayFile(path string) error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	if config.NatsURL == "" {
		return errors.New("replay requires --nats-url")
	}
	var ff time.Duration
	if fastForward != "" {
		var err error
		if ff, err = time.ParseDuration(fastForward); err != nil {
			return fmt.Errorf("invalid fast-forward value: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	src, err := recording.NewReader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	util.WaitForRequiredServices()
	conn, err := util.ConnectNats("rls-replay")
	if err != nil {
		return err
	}
	defer conn.Close()

	opts := []replay.Option{
		replay.WithSubject(config.TelemetrySubject),
		replay.WithInterval(interval),
		replay.WithSpeed(speed),
		replay.WithFastForward(ff),
		replay.WithLogger(log.Default().Named("replay")),
	}
	if replayID != "" {
		opts = append(opts, replay.WithReplayID(replayID))
	}
	r := replay.NewReplayer(conn, opts...)

	ctx, cancel := util.SignalContext()
	defer cancel()
	n, err := r.Run(ctx, src)
	if flushErr := conn.Flush(); flushErr != nil {
		log.Warn("Could not flush nats connection", log.ErrorField(flushErr))
	}
	if err != nil {
		log.Error("Replay failed", log.Int("packets", n), log.ErrorField(err))
		return err
	}
	log.Info("Replay finished",
		log.String("file", path),
		log.String("replayId", r.ReplayID()),
		log.Int("packets", n))
	return nil
}
