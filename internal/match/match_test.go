package match

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(best, second float64) Candidate {
	return Candidate{
		Best:   Correspondence{QueryIdx: 0, TrainIdx: 1, Distance: best},
		Second: &Correspondence{QueryIdx: 0, TrainIdx: 2, Distance: second},
	}
}

func TestRatioTest_Boundary(t *testing.T) {
	tests := []struct {
		name   string
		best   float64
		second float64
		accept bool
	}{
		{"exactly at ratio", 6, 10, false},
		{"just below ratio", 5.99, 10, true},
		{"just above ratio", 6.01, 10, false},
		{"clear winner", 1, 10, true},
		{"ambiguous", 9, 10, false},
		{"equal distances", 10, 10, false},
		{"both zero", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatioTest([]Candidate{candidate(tt.best, tt.second)}, 0.6)
			if tt.accept {
				require.Len(t, got, 1)
				assert.Equal(t, 1, got[0].TrainIdx)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestRatioTest_SingleNeighbour(t *testing.T) {
	got := RatioTest([]Candidate{{Best: Correspondence{Distance: 0}}}, 0.6)
	assert.Empty(t, got)
}

func TestRatioTest_KeepsOrder(t *testing.T) {
	cands := []Candidate{
		candidate(1, 10),
		candidate(8, 10),
		candidate(2, 10),
	}
	cands[0].Best.QueryIdx = 0
	cands[1].Best.QueryIdx = 1
	cands[2].Best.QueryIdx = 2

	got := RatioTest(cands, 0.6)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].QueryIdx)
	assert.Equal(t, 2, got[1].QueryIdx)
}

func TestHomography_Project(t *testing.T) {
	// scale 0.5, translate (50,50)
	h := Homography{{0.5, 0, 50}, {0, 0.5, 50}, {0, 0, 1}}

	x, y, ok := h.Project(100, 100)
	require.True(t, ok)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)

	x, y, ok = Identity().Project(3, 4)
	require.True(t, ok)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)

	degenerate := Homography{{1, 0, 0}, {0, 1, 0}, {0, 0, 0}}
	_, _, ok = degenerate.Project(0, 0)
	assert.False(t, ok)
}

func TestCorners(t *testing.T) {
	c := Corners(100, 50)
	assert.Equal(t, [4]image.Point{{0, 0}, {0, 50}, {100, 50}, {100, 0}}, c)
}

func TestArea(t *testing.T) {
	assert.Equal(t, 5000.0, Area(Corners(100, 50)))
}

func TestIsConvex(t *testing.T) {
	assert.True(t, IsConvex(Corners(10, 10)))

	bowtie := [4]image.Point{{0, 0}, {10, 10}, {10, 0}, {0, 10}}
	assert.False(t, IsConvex(bowtie))

	collapsed := [4]image.Point{{0, 0}, {5, 5}, {10, 10}, {0, 10}}
	assert.False(t, IsConvex(collapsed))

	dart := [4]image.Point{{0, 0}, {5, 2}, {10, 0}, {5, 10}}
	assert.False(t, IsConvex(dart))
}

func TestPlausible(t *testing.T) {
	assert.True(t, Plausible(Corners(20, 20), 16))
	assert.False(t, Plausible(Corners(2, 2), 16))
}
