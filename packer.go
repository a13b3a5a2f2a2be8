package crunch

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Placement records where one bitmap landed on an atlas page.
type Placement struct {
	Bitmap *Bitmap
	// X, Y is the top-left corner on the page, in pixels.
	X, Y int
	// Rotated marks bitmaps stored with a 90 degree clockwise rotation, in
	// which case the occupied area is Height x Width.
	Rotated bool
	// DuplicateOf points at the canonical placement whose pixels this one
	// shares. Alias placements contribute nothing to the page image.
	DuplicateOf *Placement
}

// Packer packs a batch of bitmaps onto a single fixed-size page.
type Packer struct {
	// Width and Height report the page extent. After Pack they are shrunk to
	// the smallest power of two covering every placement, capped at the
	// configured page size.
	Width, Height int

	padding    int
	store      *freeRectStore
	Placements []*Placement
}

// NewPacker returns a packer for an empty width x height page. Successive
// placements are separated by at least padding pixels.
func NewPacker(width, height, padding int) *Packer {
	return &Packer{
		Width:   width,
		Height:  height,
		padding: padding,
		store:   newFreeRectStore(width, height),
	}
}

// Pack walks the batch from the back (the driver sorts ascending by area, so
// placement happens largest first) and places every bitmap it can. The
// returned slice holds the bitmaps that did not fit on this page, in their
// original order, to be handed to the next page's packer.
//
// With unique enabled, bitmaps whose pixel buffers are byte-identical to an
// already placed one become alias placements sharing the canonical position.
func (p *Packer) Pack(bitmaps []*Bitmap, unique, allowRotate bool) []*Bitmap {
	var unfit []*Bitmap
	placed := make(map[uint64][]*Placement)
	failed := make(map[uint64][]*Bitmap)

	for i := len(bitmaps) - 1; i >= 0; i-- {
		b := bitmaps[i]

		if unique {
			if c := findPlacement(placed[b.Hash], b); c != nil {
				p.Placements = append(p.Placements, &Placement{
					Bitmap:      b,
					X:           c.X,
					Y:           c.Y,
					Rotated:     c.Rotated,
					DuplicateOf: c,
				})
				continue
			}
			// A duplicate of a bitmap that already failed on this page
			// cannot fit either; keep the group together for the next page.
			if findBitmap(failed[b.Hash], b) != nil {
				unfit = append(unfit, b)
				continue
			}
		}

		pt, rotated, ok := p.store.insert(b.Width()+p.padding, b.Height()+p.padding, allowRotate)
		if !ok {
			unfit = append(unfit, b)
			if unique {
				failed[b.Hash] = append(failed[b.Hash], b)
			}
			continue
		}

		pl := &Placement{Bitmap: b, X: pt.X, Y: pt.Y, Rotated: rotated}
		p.Placements = append(p.Placements, pl)
		if unique {
			placed[b.Hash] = append(placed[b.Hash], pl)
		}
	}

	// Restore the driver's ascending order for the next round.
	for i, j := 0, len(unfit)-1; i < j; i, j = i+1, j-1 {
		unfit[i], unfit[j] = unfit[j], unfit[i]
	}

	p.shrink()

	return unfit
}

// findPlacement returns the placement in the hash bucket whose bitmap is
// byte-identical to b, or nil.
func findPlacement(bucket []*Placement, b *Bitmap) *Placement {
	for _, pl := range bucket {
		if pl.Bitmap.Equal(b) {
			return pl
		}
	}
	return nil
}

// findBitmap returns the bitmap in the hash bucket byte-identical to b, or nil.
func findBitmap(bucket []*Bitmap, b *Bitmap) *Bitmap {
	for _, other := range bucket {
		if other.Equal(b) {
			return other
		}
	}
	return nil
}

// extent returns the occupied width and height of the placement on the page.
func (pl *Placement) extent() (int, int) {
	if pl.Rotated {
		return pl.Bitmap.Height(), pl.Bitmap.Width()
	}
	return pl.Bitmap.Width(), pl.Bitmap.Height()
}

// shrink trims the reported page size to the smallest power of two covering
// the tight bounding box of all placements.
func (p *Packer) shrink() {
	if len(p.Placements) == 0 {
		return
	}
	maxX, maxY := 0, 0
	for _, pl := range p.Placements {
		w, h := pl.extent()
		if pl.X+w > maxX {
			maxX = pl.X + w
		}
		if pl.Y+h > maxY {
			maxY = pl.Y + h
		}
	}
	if w := nextPow2(maxX); w < p.Width {
		p.Width = w
	}
	if h := nextPow2(maxY); h < p.Height {
		p.Height = h
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Image renders the composited atlas page. Every non-alias placement is
// blitted at its position, rotated 90 degrees clockwise when packed that way.
func (p *Packer) Image() *image.NRGBA {
	page := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for _, pl := range p.Placements {
		if pl.DuplicateOf != nil {
			continue
		}
		img := pl.Bitmap.Img
		if pl.Rotated {
			img = imaging.Rotate270(img)
		}
		b := img.Bounds()
		r := image.Rect(pl.X, pl.Y, pl.X+b.Dx(), pl.Y+b.Dy())
		draw.Draw(page, r, img, image.Point{}, draw.Src)
	}
	return page
}
