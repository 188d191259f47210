package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/analysis"
	"github.com/psuracing/racingline-service-go/pkg/cmd/util"
	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/racingline"
	"github.com/psuracing/racingline-service-go/pkg/recording"
)

const outlineSpeed = 30.0 // km/h, initial target speed of extracted outlines

var (
	reportFile   string
	outFile      string
	plotFile     string
	outlinePts   int
	segments     int
	minStop      time.Duration
	stopSpeed    float64
	samplePeriod time.Duration
	excludeStart float64
)

//nolint:funlen // flag definitions
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <attempt.csv>",
		Short: "evaluates a recorded attempt against the racing line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyzeFile(args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&config.TrackFile,
		"track-file",
		"",
		"racing line document (json or yaml). The built-in track is used if empty")
	cmd.Flags().StringVar(&reportFile, "report", "-",
		"file receiving the json report (- for stdout)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "",
		"write the updated racing line document to this file")
	cmd.Flags().StringVar(&plotFile, "plot", "",
		"write a png plot of racing line and samples to this file")
	cmd.Flags().IntVar(&outlinePts, "outline", 0,
		"derive the racing line from the recording with about this many points")
	cmd.Flags().IntVar(&segments, "segments", 4,
		"number of segments of a derived racing line")
	cmd.Flags().DurationVar(&minStop, "min-stop", analysis.DefaultMinStop,
		"minimum duration of a reported stop")
	cmd.Flags().Float64Var(&stopSpeed, "stop-speed", analysis.DefaultStopSpeed,
		"speed in km/h below which the car counts as stopped")
	cmd.Flags().DurationVar(&samplePeriod, "sample-period", analysis.DefaultSamplePeriod,
		"time between two recorded samples")
	cmd.Flags().Float64Var(&excludeStart, "exclude-start", 0,
		"ignore stops within this many meters of the first racing line point")
	return cmd
}

//nolint:funlen,cyclop // by design
func analyzeFile(path string, stdout io.Writer) error {
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	samples, err := readSamples(path)
	if err != nil {
		return err
	}
	log.Info("Read recording", log.String("file", path), log.Int("samples", len(samples)))

	track, err := baseTrack(samples)
	if err != nil {
		return err
	}

	opts := []analysis.Option{
		analysis.WithMinStop(minStop),
		analysis.WithStopSpeed(stopSpeed),
		analysis.WithSamplePeriod(samplePeriod),
		analysis.WithLogger(log.Default().Named("analysis")),
	}
	if excludeStart > 0 {
		start := track.At(0)
		opts = append(opts, analysis.WithStartExclusion(start.Lat, start.Lon, excludeStart))
	}
	report, err := analysis.NewAnalyzer(opts...).Analyze(track, samples)
	if err != nil {
		return err
	}
	if report.StopLine != nil {
		log.Info("Stop line candidate",
			log.Float64("lat", report.StopLine.Lat),
			log.Float64("lon", report.StopLine.Lon),
			log.Float64("duration", report.StopLine.DurationS),
			log.String("segment", report.StopLine.Segment))
	}

	if err := writeReport(report, stdout); err != nil {
		return err
	}
	if outFile != "" {
		if err := writeTrack(outFile, analysis.UpdateTrack(track, report)); err != nil {
			return err
		}
		log.Info("Wrote racing line", log.String("file", outFile))
	}
	if plotFile != "" {
		if err := analysis.PlotPNG(plotFile, track, samples, report); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		log.Info("Wrote plot", log.String("file", plotFile))
	}
	return nil
}

func readSamples(path string) ([]model.TelemetryPacket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := recording.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r.ReadAll()
}

// baseTrack returns the configured track or, if requested, one derived from
// the recording.
func baseTrack(samples []model.TelemetryPacket) (*model.Track, error) {
	if outlinePts <= 0 {
		return racingline.Load(config.TrackFile, log.Default().Named("racingline")), nil
	}
	if segments <= 0 {
		return nil, fmt.Errorf("invalid number of segments %d", segments)
	}
	outline := analysis.ExtractOutline(samples, outlinePts)
	if len(outline) < segments {
		return nil, fmt.Errorf("recording yields %d outline points, need at least %d",
			len(outline), segments)
	}
	log.Info("Derived racing line from recording", log.Int("points", len(outline)))
	return racingline.PartitionOutline(outline,
		lo.Times(segments, func(int) float64 { return outlineSpeed }),
		make([]float64, segments)), nil
}

func writeReport(report *analysis.Report, stdout io.Writer) error {
	w := stdout
	if reportFile != "-" {
		f, err := os.Create(reportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeTrack(path string, track *model.Track) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := racingline.Encode(f, track); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
