// Package render draws a localization result onto a pixel-addressable
// surface: the processed image scaled to the dimensions the backend declared,
// with a fixed-geometry marker at the returned pixel coordinates.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"uilocator/pkg/asset"
	"uilocator/pkg/types"
)

// Marker geometry is fixed: a translucent halo with a stroked rim and a solid
// center dot, all in the accent color.
const (
	haloRadius   = 20.0
	haloStroke   = 3.0
	centerRadius = 4.0
)

var (
	accent     = color.NRGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}
	accentFill = color.NRGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0x4d}
)

// Annotation is a rendered result: the sized surface with the marker drawn,
// plus the exact marker center it was drawn at.
type Annotation struct {
	Surface *image.NRGBA
	CenterX float64
	CenterY float64
}

// Render decodes the result's processed image and draws the marker. The
// surface is always exactly ImageWidth×ImageHeight as declared by the result;
// the decoded image is scaled to fill it when its intrinsic size differs,
// since those declared dimensions are what the pixel coordinates refer to.
// A malformed processed image fails with DecodeError.
func Render(result *types.LocalizationResult) (*Annotation, error) {
	if result.ImageWidth <= 0 || result.ImageHeight <= 0 {
		return nil, &types.DecodeError{Err: fmt.Errorf("invalid surface dimensions %dx%d", result.ImageWidth, result.ImageHeight)}
	}

	img, err := asset.DecodeDataURI(result.ProcessedImage)
	if err != nil {
		return nil, &types.DecodeError{Err: err}
	}

	surface := imaging.Clone(img)
	if b := surface.Bounds(); b.Dx() != result.ImageWidth || b.Dy() != result.ImageHeight {
		surface = imaging.Resize(img, result.ImageWidth, result.ImageHeight, imaging.Lanczos)
	}

	cx := result.Coordinates.XPixel
	cy := result.Coordinates.YPixel
	fillDisc(surface, cx, cy, haloRadius, accentFill)
	strokeCircle(surface, cx, cy, haloRadius, haloStroke, accent)
	fillDisc(surface, cx, cy, centerRadius, accent)

	return &Annotation{Surface: surface, CenterX: cx, CenterY: cy}, nil
}

func fillDisc(img *image.NRGBA, cx, cy, r float64, c color.NRGBA) {
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r {
				blendPixel(img, x, y, c)
			}
		}
	}
}

func strokeCircle(img *image.NRGBA, cx, cy, r, stroke float64, c color.NRGBA) {
	outer := r + stroke/2
	x0, x1 := int(math.Floor(cx-outer)), int(math.Ceil(cx+outer))
	y0, y1 := int(math.Floor(cy-outer)), int(math.Ceil(cy+outer))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if math.Abs(math.Sqrt(dx*dx+dy*dy)-r) <= stroke/2 {
				blendPixel(img, x, y, c)
			}
		}
	}
}

// blendPixel composites c over the pixel at (x, y) using straight alpha.
func blendPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	i := (y-b.Min.Y)*img.Stride + (x-b.Min.X)*4
	a := uint32(c.A)
	inv := 255 - a
	img.Pix[i+0] = uint8((uint32(c.R)*a + uint32(img.Pix[i+0])*inv) / 255)
	img.Pix[i+1] = uint8((uint32(c.G)*a + uint32(img.Pix[i+1])*inv) / 255)
	img.Pix[i+2] = uint8((uint32(c.B)*a + uint32(img.Pix[i+2])*inv) / 255)
	img.Pix[i+3] = uint8(a + uint32(img.Pix[i+3])*inv/255)
}
