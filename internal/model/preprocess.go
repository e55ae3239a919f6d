package model

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// Preprocess resizes img to the model's square input and scales each RGB
// channel to [0,1], laid out per meta.Layout. Alpha is dropped, not
// composited, so transparent pixels keep their stored colour.
func Preprocess(img image.Image, meta Metadata) []float32 {
	size := uint(meta.ImageSize)
	resized := resize.Resize(size, size, opaque(img), resize.Bicubic)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)

			rv := float32(c.R) / 255.0
			gv := float32(c.G) / 255.0
			bv := float32(c.B) / 255.0

			pixel := y*width + x
			if meta.Layout == LayoutNCHW {
				data[pixel] = rv
				data[plane+pixel] = gv
				data[2*plane+pixel] = bv
			} else {
				data[3*pixel] = rv
				data[3*pixel+1] = gv
				data[3*pixel+2] = bv
			}
		}
	}
	return data
}

// opaque copies img into a fully opaque NRGBA image, keeping the
// non-premultiplied colour of every pixel.
func opaque(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}
