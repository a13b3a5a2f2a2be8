package crunch

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// Bitmap holds the decoded pixels of one source image together with the
// identity it carries into the atlas manifest.
type Bitmap struct {
	// Name is the relative identifier of the source image: directory prefix
	// stripped, extensionless, forward slashes.
	Name string
	// Img owns the (possibly trimmed) RGBA8 samples.
	Img *image.NRGBA
	// Frame is the bounding box of the opaque pixels inside the original,
	// untrimmed image. With trimming disabled it spans the whole image.
	FrameX, FrameY, FrameW, FrameH int
	// Hash is the 64-bit content hash of the pixel buffer, used as a fast
	// lookup key when deduplicating. Equality is always confirmed by a
	// byte compare.
	Hash uint64
}

// LoadBitmap decodes the PNG file at path into a Bitmap named name,
// optionally premultiplying the samples by their alpha channel and trimming
// the excess transparency off the borders.
func LoadBitmap(path, name string, premultiply, trim bool) (*Bitmap, error) {
	img, err := decodeImg(path)
	if err != nil {
		return nil, err
	}
	if premultiply {
		premultiplyAlpha(img)
	}

	b := &Bitmap{Name: name, Img: img}
	if trim {
		b.trim()
	} else {
		b.FrameW, b.FrameH = b.Width(), b.Height()
	}
	b.Hash = HashBytes(b.Img.Pix)

	return b, nil
}

// Width returns the bitmap width after trimming.
func (b *Bitmap) Width() int {
	return b.Img.Bounds().Dx()
}

// Height returns the bitmap height after trimming.
func (b *Bitmap) Height() int {
	return b.Img.Bounds().Dy()
}

// Area returns the number of pixels the bitmap occupies on a page.
func (b *Bitmap) Area() int {
	return b.Width() * b.Height()
}

// Equal reports whether the two bitmaps carry byte-identical pixel buffers.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b.Width() != other.Width() || b.Height() != other.Height() {
		return false
	}
	return bytes.Equal(b.Img.Pix, other.Img.Pix)
}

// trim crops the bitmap to the tightest axis-aligned rectangle containing any
// pixel with a non-zero alpha and records that rectangle as the frame. A fully
// transparent image collapses to a 1x1 transparent bitmap with a zero frame.
func (b *Bitmap) trim() {
	var (
		bounds = b.Img.Bounds()
		dx, dy = bounds.Dx(), bounds.Dy()
	)
	minX, minY := dx, dy
	maxX, maxY := -1, -1

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			if b.Img.Pix[b.Img.PixOffset(x, y)+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < 0 {
		b.Img = image.NewNRGBA(image.Rect(0, 0, 1, 1))
		b.FrameX, b.FrameY, b.FrameW, b.FrameH = 0, 0, 0, 0
		return
	}

	b.FrameX, b.FrameY = minX, minY
	b.FrameW, b.FrameH = maxX-minX+1, maxY-minY+1
	b.Img = imaging.Crop(b.Img, image.Rect(minX, minY, maxX+1, maxY+1))
}

// premultiplyAlpha scales the color channels of every pixel by its alpha
// channel, rounding to nearest.
func premultiplyAlpha(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0xff {
			continue
		}
		img.Pix[i+0] = uint8((int(img.Pix[i+0])*a + 127) / 255)
		img.Pix[i+1] = uint8((int(img.Pix[i+1])*a + 127) / 255)
		img.Pix[i+2] = uint8((int(img.Pix[i+2])*a + 127) / 255)
	}
}
