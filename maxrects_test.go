package crunch

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeRectStore_FirstInsertTopLeft(t *testing.T) {
	s := newFreeRectStore(64, 64)

	pt, rotated, ok := s.insert(10, 10, false)
	require.True(t, ok)
	assert.Equal(t, image.Pt(0, 0), pt)
	assert.False(t, rotated)
}

func TestFreeRectStore_BestShortSideFit(t *testing.T) {
	s := newFreeRectStore(64, 64)

	_, _, ok := s.insert(40, 16, false)
	require.True(t, ok)

	// Two free rectangles remain: the 64x48 strip below (short side
	// leftover 32) and the 24x64 strip to the right (short side leftover 8).
	// The right strip leaves the smaller short side and wins.
	pt, _, ok := s.insert(16, 16, false)
	require.True(t, ok)
	assert.Equal(t, image.Pt(40, 0), pt)
}

func TestFreeRectStore_Rotation(t *testing.T) {
	s := newFreeRectStore(8, 8)

	pt, rotated, ok := s.insert(8, 4, false)
	require.True(t, ok)
	require.Equal(t, image.Pt(0, 0), pt)
	require.False(t, rotated)

	// A 4x8 rectangle only fits the remaining 8x4 strip when rotated.
	_, _, ok = s.insert(4, 8, false)
	assert.False(t, ok)

	pt, rotated, ok = s.insert(4, 8, true)
	require.True(t, ok)
	assert.Equal(t, image.Pt(0, 4), pt)
	assert.True(t, rotated)
}

func TestFreeRectStore_NoFit(t *testing.T) {
	s := newFreeRectStore(64, 64)

	_, _, ok := s.insert(65, 10, false)
	assert.False(t, ok)

	_, _, ok = s.insert(10, 65, true)
	assert.False(t, ok)
}

func TestFreeRectStore_PlacementsDisjoint(t *testing.T) {
	s := newFreeRectStore(128, 128)
	page := image.Rect(0, 0, 128, 128)

	sizes := [][2]int{
		{60, 60}, {40, 50}, {50, 20}, {20, 50}, {30, 30},
		{30, 30}, {25, 10}, {10, 25}, {10, 10}, {10, 10}, {5, 5},
	}
	var placed []image.Rectangle
	for _, size := range sizes {
		pt, rotated, ok := s.insert(size[0], size[1], true)
		if !ok {
			continue
		}
		w, h := size[0], size[1]
		if rotated {
			w, h = h, w
		}
		placed = append(placed, image.Rect(pt.X, pt.Y, pt.X+w, pt.Y+h))
	}
	require.NotEmpty(t, placed)

	for i := range placed {
		assert.True(t, placed[i].In(page), "placement %v escapes the page", placed[i])
		for j := i + 1; j < len(placed); j++ {
			assert.False(t, placed[i].Overlaps(placed[j]),
				"placements %v and %v overlap", placed[i], placed[j])
		}
	}
}

func TestFreeRectStore_PruneKeepsMaximalRects(t *testing.T) {
	s := newFreeRectStore(128, 128)

	for _, size := range [][2]int{{50, 30}, {30, 50}, {20, 20}, {60, 10}} {
		_, _, ok := s.insert(size[0], size[1], false)
		require.True(t, ok)
	}

	for i := range s.freeRects {
		for j := range s.freeRects {
			if i == j {
				continue
			}
			assert.False(t, s.freeRects[i].In(s.freeRects[j]),
				"free rect %v is contained in %v", s.freeRects[i], s.freeRects[j])
		}
	}
}
