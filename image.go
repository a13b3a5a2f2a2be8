package crunch

import (
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/esimov/crunch/utils"
)

// decodeImg decodes an image file to type *image.NRGBA.
func decodeImg(src string) (*image.NRGBA, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open the image file: %s", src)
	}
	defer file.Close()

	ctype, err := utils.DetectFileContentType(file.Name())
	if err != nil {
		return nil, err
	}
	if !strings.Contains(ctype, "image") {
		return nil, errors.Errorf("%s is not an image file", src)
	}

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode the image file: %s", src)
	}
	return imgToNRGBA(img), nil
}

// imgToNRGBA normalizes a decoded image to *image.NRGBA with its origin at
// (0, 0). 8-bit PNG files carrying an alpha channel decode to NRGBA already
// and pass through untouched; 16-bit, opaque, grayscale and paletted files
// take the generic conversion path.
func imgToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if src, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) {
		return src
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}
