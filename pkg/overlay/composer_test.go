package overlay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psuracing/racingline-service-go/log"
	"github.com/psuracing/racingline-service-go/pkg/camera"
	"github.com/psuracing/racingline-service-go/pkg/config"
	"github.com/psuracing/racingline-service-go/pkg/geo"
	"github.com/psuracing/racingline-service-go/pkg/model"
	"github.com/psuracing/racingline-service-go/pkg/racingline"
)

func newTestComposer(track *model.Track) *Composer {
	return NewComposer(
		WithTrackProvider(racingline.Static(track)),
		WithProjector(camera.NewProjector(config.DefaultCameraConfig())),
		WithConfig(config.DefaultOverlayConfig()),
		WithLogger(log.Nop()))
}

func assertInFrame(t *testing.T, res *model.OverlayResult, params camera.Params) {
	t.Helper()
	for _, p := range res.OverlayPoints {
		assert.GreaterOrEqual(t, p.X, 0)
		assert.Less(t, p.X, params.Width)
		assert.GreaterOrEqual(t, p.Y, 0)
		assert.Less(t, p.Y, params.Height)
	}
}

func TestCompose_defaultTrackNearStart(t *testing.T) {
	track := racingline.DefaultTrack()
	last, first := track.Points[45], track.Points[0]
	pose := model.CarPose{
		Lat:     25.488435,
		Lon:     51.450190,
		Heading: geo.Bearing(last.Lat, last.Lon, first.Lat, first.Lon),
		Speed:   30,
	}
	params := camera.Params{Width: 1280, Height: 720}
	res, err := newTestComposer(track).Compose(context.Background(), pose, params)
	require.NoError(t, err)

	assert.Contains(t, []string{"Q1", "Q2", "Q3", "Q4"}, res.Segment)
	assert.Equal(t, "Q1", res.Segment)
	assert.NotEmpty(t, res.OverlayPoints)
	assert.LessOrEqual(t, len(res.OverlayPoints), 60)
	assertInFrame(t, res, params)
	assert.InDelta(t, 30, res.TargetSpeed, 1e-9)
	assert.InDelta(t, 150, res.Efficiency, 1e-9)
	assert.InDelta(t, 0, res.SpeedDiff, 1e-9)
	// the car sits between the last and the first line point, about 35 m
	// from the closest one
	assert.InDelta(t, 35.1, res.DeviationM, 0.1)
	assert.False(t, res.OnTrack)
}

func TestCompose_facingAway(t *testing.T) {
	pose := model.CarPose{Lat: 25.488435, Lon: 51.450190, Heading: 45, Speed: 30}
	res, err := newTestComposer(racingline.DefaultTrack()).
		Compose(context.Background(), pose, camera.DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, res.OverlayPoints)
	assert.NotNil(t, res.OverlayPoints)
	assert.Equal(t, "Q1", res.Segment)
	assert.False(t, res.OnTrack)
}

func TestCompose_deviation(t *testing.T) {
	track := racingline.DefaultTrack()
	tests := []struct {
		name       string
		idx        int
		offsetM    float64
		wantOnTrck bool
	}{
		{"on the line", 12, 0, true},
		{"slightly off", 25, 5, true},
		{"15 m off", 12, 15, false},
		{"15 m off last point", 45, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, next := track.At(tt.idx), track.At(tt.idx+1)
			dir := geo.Bearing(p.Lat, p.Lon, next.Lat, next.Lon)
			lat, lon := geo.Destination(p.Lat, p.Lon, dir+90, tt.offsetM)
			pose := model.CarPose{Lat: lat, Lon: lon, Heading: dir, Speed: 20}

			res, err := newTestComposer(track).Compose(context.Background(), pose, camera.DefaultParams())
			require.NoError(t, err)
			assert.InDelta(t, tt.offsetM, res.DeviationM, 0.05)
			assert.Equal(t, tt.wantOnTrck, res.OnTrack)
			assert.Equal(t, p.SegmentName, res.Segment)
			assert.InDelta(t, p.TargetSpeed-20, res.SpeedDiff, 1e-9)
		})
	}
}

func TestCompose_emptyTrack(t *testing.T) {
	res, err := newTestComposer(&model.Track{}).
		Compose(context.Background(), model.CarPose{Lat: 25, Lon: 51, Speed: 12}, camera.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, &model.OverlayResult{OverlayPoints: []model.Pixel{}, Segment: NotLocated}, res)
}

type failingProvider struct{}

func (failingProvider) Track(context.Context) (*model.Track, error) {
	return nil, errors.New("boom")
}
func (failingProvider) Invalidate(context.Context) {}

func TestCompose_providerError(t *testing.T) {
	c := NewComposer(WithTrackProvider(failingProvider{}), WithLogger(log.Nop()))
	_, err := c.Compose(context.Background(), model.CarPose{}, camera.DefaultParams())
	assert.EqualError(t, err, "boom")
}

// recordingProjector sees every window point and accepts all of them.
type recordingProjector struct {
	seen []model.TrackPoint
}

func (r *recordingProjector) Project(
	lat, lon float64, _ model.CarPose, _ camera.Params,
) (model.Pixel, bool) {
	r.seen = append(r.seen, model.TrackPoint{Lat: lat, Lon: lon})
	return model.Pixel{X: len(r.seen), Y: 0}, len(r.seen)%2 == 0
}

func TestCompose_windowWrapsAndDropsInvisible(t *testing.T) {
	track := racingline.DefaultTrack()
	rp := &recordingProjector{}
	c := NewComposer(
		WithTrackProvider(racingline.Static(track)),
		WithProjector(rp),
		WithConfig(config.OverlayConfig{WindowSize: 5, OnTrackThreshold: 10}),
		WithLogger(log.Nop()))
	p := track.Points[44]
	res, err := c.Compose(context.Background(), model.CarPose{Lat: p.Lat, Lon: p.Lon}, camera.DefaultParams())
	require.NoError(t, err)

	require.Len(t, rp.seen, 5)
	for k, want := range []int{44, 45, 0, 1, 2} {
		assert.InDelta(t, track.Points[want].Lat, rp.seen[k].Lat, 1e-12)
	}
	assert.Equal(t, []model.Pixel{{X: 2}, {X: 4}}, res.OverlayPoints)
	assert.True(t, res.OnTrack)
}

func TestCompose_unknownSegmentHasNoEfficiency(t *testing.T) {
	track := &model.Track{Points: []model.TrackPoint{
		{Lat: 25, Lon: 51, TargetSpeed: 10, SegmentID: 9, SegmentName: "X"},
	}}
	res, err := newTestComposer(track).
		Compose(context.Background(), model.CarPose{Lat: 25, Lon: 51}, camera.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "X", res.Segment)
	assert.Zero(t, res.Efficiency)
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   float64
	}{
		{2.675, 2, 2.68},
		{-2.675, 2, -2.68},
		{0.05, 1, 0.1},
		{-0.05, 1, -0.1},
		{14.994, 2, 14.99},
		{3, 1, 3},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, round(tt.v, tt.places), 1e-12, "round(%v,%d)", tt.v, tt.places)
	}
}
