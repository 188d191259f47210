package analysis

import (
	"fmt"
	"image/color"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/psuracing/racingline-service-go/pkg/model"
)

var (
	lineColor   = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	sampleColor = color.RGBA{R: 60, G: 110, B: 200, A: 120}
	stopColor   = color.RGBA{R: 20, G: 150, B: 60, A: 255}
)

// PlotPNG draws the racing line, the positioned samples and the stops of r
// into a png file at path.
func PlotPNG(path string, track *model.Track, samples []model.TelemetryPacket, r *Report) error {
	p := plot.New()
	p.Title.Text = "Racing line"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	positioned := lo.Filter(samples, func(s model.TelemetryPacket, _ int) bool {
		return hasPosition(&s)
	})
	if len(positioned) > 0 {
		pts := make(plotter.XYs, len(positioned))
		for i, s := range positioned {
			pts[i] = plotter.XY{X: s.Longitude, Y: s.Latitude}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.Color = sampleColor
		scatter.Radius = vg.Points(1)
		p.Add(scatter)
		p.Legend.Add("samples", scatter)
	}

	if track.Len() > 0 {
		// repeat the first point to draw the closed loop
		pts := make(plotter.XYs, track.Len()+1)
		for i := range pts {
			tp := track.At(i)
			pts[i] = plotter.XY{X: tp.Lon, Y: tp.Lat}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = lineColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("racing line", line)
	}

	if r != nil && len(r.Stops) > 0 {
		pts := lo.Map(r.Stops, func(s Stop, _ int) plotter.XY {
			return plotter.XY{X: s.Lon, Y: s.Lat}
		})
		stops, err := plotter.NewScatter(plotter.XYs(pts))
		if err != nil {
			return err
		}
		stops.Color = stopColor
		stops.Radius = vg.Points(4)
		p.Add(stops)
		p.Legend.Add(fmt.Sprintf("stops (%d)", len(r.Stops)), stops)
	}

	p.Add(plotter.NewGrid())
	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}
