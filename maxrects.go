package crunch

import (
	"image"
	"math"

	"github.com/esimov/crunch/utils"
)

// freeRectStore maintains the set of maximal free rectangles covering the
// unoccupied area of one atlas page. Rectangles are inserted one at a time
// using the best short side fit heuristic: the candidate free rectangle
// leaving the smallest leftover on its shorter side wins, with the smallest
// leftover on the longer side breaking ties. Remaining ties keep the first
// candidate encountered.
type freeRectStore struct {
	width, height int
	freeRects     []image.Rectangle
	newFreeRects  []image.Rectangle
}

// newFreeRectStore returns a store whose free area is the whole page.
func newFreeRectStore(width, height int) *freeRectStore {
	return &freeRectStore{
		width:     width,
		height:    height,
		freeRects: []image.Rectangle{image.Rect(0, 0, width, height)},
	}
}

// insert places a w x h rectangle onto the page and returns its top-left
// corner together with a flag reporting whether the rectangle was rotated 90
// degrees. The last return value is false when no free rectangle can hold the
// requested size in either orientation.
func (s *freeRectStore) insert(w, h int, allowRotate bool) (image.Point, bool, bool) {
	var (
		best      image.Rectangle
		bestShort = math.MaxInt32
		bestLong  = math.MaxInt32
		rotated   bool
		found     bool
	)

	score := func(free image.Rectangle, pw, ph int) (int, int, bool) {
		fw, fh := free.Dx(), free.Dy()
		if fw < pw || fh < ph {
			return 0, 0, false
		}
		return utils.Min(fw-pw, fh-ph), utils.Max(fw-pw, fh-ph), true
	}

	for _, free := range s.freeRects {
		if short, long, ok := score(free, w, h); ok {
			if short < bestShort || (short == bestShort && long < bestLong) {
				best = image.Rect(free.Min.X, free.Min.Y, free.Min.X+w, free.Min.Y+h)
				bestShort, bestLong = short, long
				rotated = false
				found = true
			}
		}
		if !allowRotate {
			continue
		}
		if short, long, ok := score(free, h, w); ok {
			if short < bestShort || (short == bestShort && long < bestLong) {
				best = image.Rect(free.Min.X, free.Min.Y, free.Min.X+h, free.Min.Y+w)
				bestShort, bestLong = short, long
				rotated = true
				found = true
			}
		}
	}

	if !found {
		return image.Point{}, false, false
	}
	s.place(best)

	return best.Min, rotated, true
}

// place carves the accepted rectangle out of every intersecting free
// rectangle and restores the maximal rectangles invariant.
func (s *freeRectStore) place(used image.Rectangle) {
	for i := 0; i < len(s.freeRects); {
		if s.split(s.freeRects[i], used) {
			last := len(s.freeRects) - 1
			s.freeRects[i] = s.freeRects[last]
			s.freeRects = s.freeRects[:last]
		} else {
			i++
		}
	}
	s.prune()
}

// split replaces the free rectangle with up to four maximal strips covering
// free minus used. It reports whether the two rectangles intersected at all;
// disjoint free rectangles survive unchanged.
func (s *freeRectStore) split(free, used image.Rectangle) bool {
	if !free.Overlaps(used) {
		return false
	}

	// Strip above the used rectangle.
	if used.Min.Y > free.Min.Y {
		s.newFreeRects = append(s.newFreeRects,
			image.Rect(free.Min.X, free.Min.Y, free.Max.X, used.Min.Y))
	}
	// Strip below.
	if used.Max.Y < free.Max.Y {
		s.newFreeRects = append(s.newFreeRects,
			image.Rect(free.Min.X, used.Max.Y, free.Max.X, free.Max.Y))
	}
	// Strip to the left.
	if used.Min.X > free.Min.X {
		s.newFreeRects = append(s.newFreeRects,
			image.Rect(free.Min.X, free.Min.Y, used.Min.X, free.Max.Y))
	}
	// Strip to the right.
	if used.Max.X < free.Max.X {
		s.newFreeRects = append(s.newFreeRects,
			image.Rect(used.Max.X, free.Min.Y, free.Max.X, free.Max.Y))
	}

	return true
}

// prune merges the freshly split strips into the free list and removes every
// rectangle fully contained in another, bounding the list size and restoring
// the maximal rectangles invariant.
func (s *freeRectStore) prune() {
	s.freeRects = append(s.freeRects, s.newFreeRects...)
	s.newFreeRects = s.newFreeRects[:0]

	for i := 0; i < len(s.freeRects); i++ {
		for j := i + 1; j < len(s.freeRects); {
			if s.freeRects[i].In(s.freeRects[j]) {
				last := len(s.freeRects) - 1
				s.freeRects[i] = s.freeRects[last]
				s.freeRects = s.freeRects[:last]
				i--
				break
			}
			if s.freeRects[j].In(s.freeRects[i]) {
				last := len(s.freeRects) - 1
				s.freeRects[j] = s.freeRects[last]
				s.freeRects = s.freeRects[:last]
			} else {
				j++
			}
		}
	}
}
