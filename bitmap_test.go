package crunch

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillImage returns a w x h image with every pixel set to c.
func fillImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// testBitmap builds an untrimmed bitmap directly, bypassing the decoder.
func testBitmap(name string, w, h int, c color.NRGBA) *Bitmap {
	img := fillImage(w, h, c)
	return &Bitmap{
		Name:   name,
		Img:    img,
		FrameW: w,
		FrameH: h,
		Hash:   HashBytes(img.Pix),
	}
}

// writePng encodes the image as a PNG file, creating parent directories.
func writePng(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, imaging.Save(img, path))
}

var opaqueWhite = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func TestLoadBitmap_NoTrim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writePng(t, path, fillImage(10, 10, opaqueWhite))

	b, err := LoadBitmap(path, "a", false, false)
	require.NoError(t, err)

	assert.Equal(t, "a", b.Name)
	assert.Equal(t, 10, b.Width())
	assert.Equal(t, 10, b.Height())
	assert.Equal(t, 100, b.Area())
	assert.Equal(t, []int{0, 0, 10, 10}, []int{b.FrameX, b.FrameY, b.FrameW, b.FrameH})
	assert.Equal(t, HashBytes(b.Img.Pix), b.Hash)
}

func TestLoadBitmap_Trim(t *testing.T) {
	// Only the pixel grid [5..14] x [6..15] is opaque.
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 6; y <= 15; y++ {
		for x := 5; x <= 14; x++ {
			img.SetNRGBA(x, y, opaqueWhite)
		}
	}
	path := filepath.Join(t.TempDir(), "b.png")
	writePng(t, path, img)

	b, err := LoadBitmap(path, "b", false, true)
	require.NoError(t, err)

	assert.Equal(t, 10, b.Width())
	assert.Equal(t, 10, b.Height())
	assert.Equal(t, []int{5, 6, 10, 10}, []int{b.FrameX, b.FrameY, b.FrameW, b.FrameH})
	assert.Equal(t, fillImage(10, 10, opaqueWhite).Pix, b.Img.Pix)
}

func TestLoadBitmap_TrimFullyTransparent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	writePng(t, path, image.NewNRGBA(image.Rect(0, 0, 6, 6)))

	b, err := LoadBitmap(path, "empty", false, true)
	require.NoError(t, err)

	assert.Equal(t, 1, b.Width())
	assert.Equal(t, 1, b.Height())
	assert.Equal(t, []int{0, 0, 0, 0}, []int{b.FrameX, b.FrameY, b.FrameW, b.FrameH})
	assert.Equal(t, []uint8{0, 0, 0, 0}, b.Img.Pix)
}

func TestLoadBitmap_Premultiply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.png")
	writePng(t, path, fillImage(1, 1, color.NRGBA{R: 200, G: 100, B: 60, A: 128}))

	b, err := LoadBitmap(path, "p", true, false)
	require.NoError(t, err)

	// Color channels scaled by 128/255, rounded to nearest; alpha untouched.
	assert.Equal(t, []uint8{100, 50, 30, 128}, b.Img.Pix)
}

func TestLoadBitmap_DecodeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("this is not a png"), 0644))

	_, err := LoadBitmap(path, "bad", false, false)
	assert.Error(t, err)
}

func TestBitmap_Equal(t *testing.T) {
	a := testBitmap("a", 8, 8, color.NRGBA{R: 0xff, A: 0xff})
	b := testBitmap("b", 8, 8, color.NRGBA{R: 0xff, A: 0xff})
	c := testBitmap("c", 8, 8, color.NRGBA{G: 0xff, A: 0xff})
	d := testBitmap("d", 4, 16, color.NRGBA{R: 0xff, A: 0xff})

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash, b.Hash)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}
