package racingline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTrack(t *testing.T) {
	track := DefaultTrack()
	assert.Len(t, track.Points, 46)
	assert.Len(t, track.Segments, 4)

	bounds := []struct {
		name  string
		first int
		last  int
		speed float64
		eff   float64
	}{
		{"Q1", 0, 10, 30, 150},
		{"Q2", 11, 21, 25, 145},
		{"Q3", 22, 32, 28, 160},
		{"Q4", 33, 45, 32, 155},
	}
	for id, b := range bounds {
		t.Run(b.name, func(t *testing.T) {
			seg, ok := track.SegmentByID(id)
			assert.True(t, ok)
			assert.Equal(t, b.name, seg.Name)
			assert.InDelta(t, b.speed, seg.TargetSpeed, 1e-9)
			assert.InDelta(t, b.eff, seg.Efficiency, 1e-9)
			for i := b.first; i <= b.last; i++ {
				p := track.Points[i]
				assert.Equal(t, id, p.SegmentID, "point %d", i)
				assert.Equal(t, b.name, p.SegmentName, "point %d", i)
				assert.InDelta(t, b.speed, p.TargetSpeed, 1e-9, "point %d", i)
			}
		})
	}
}

func TestDefaultTrack_freshCopy(t *testing.T) {
	a := DefaultTrack()
	b := DefaultTrack()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("DefaultTrack() not deterministic (-first +second):\n%s", diff)
	}
	a.Points[0].Lat = 0
	a.Segments[0].Name = "changed"
	c := DefaultTrack()
	assert.InDelta(t, 25.488720817, c.Points[0].Lat, 1e-12)
	assert.Equal(t, "Q1", c.Segments[0].Name)
}

func TestPartitionOutline_tinyOutline(t *testing.T) {
	outline := [][2]float64{{1, 1}, {2, 2}, {3, 3}}
	track := PartitionOutline(outline, []float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	assert.Equal(t, []int{0, 1, 2}, []int{
		track.Points[0].SegmentID,
		track.Points[1].SegmentID,
		track.Points[2].SegmentID,
	})
}
