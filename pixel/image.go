package pixel

import (
	"image"
	"image/color"
)

// Image is a normalized 8-bit interleaved RGB image. Its row stride is
// exactly 3×width, which is the byte layout display consumers expect.
type Image struct {
	width  int
	height int
	pix    []byte
}

func newImage(width, height int) *Image {
	return &Image{
		width:  width,
		height: height,
		pix:    make([]byte, 3*width*height),
	}
}

func (i *Image) Width() int {
	return i.width
}

func (i *Image) Height() int {
	return i.height
}

// Stride returns the number of bytes between vertically adjacent pixels.
func (i *Image) Stride() int {
	return 3 * i.width
}

// Bytes returns the underlying interleaved RGB buffer. The slice is owned by
// the image; callers must not grow it.
func (i *Image) Bytes() []byte {
	return i.pix
}

func (i *Image) ColorModel() color.Model {
	return color.RGBAModel
}

func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

func (i *Image) At(x, y int) color.Color {
	k := y*i.Stride() + 3*x
	return color.RGBA{R: i.pix[k], G: i.pix[k+1], B: i.pix[k+2], A: 255}
}
