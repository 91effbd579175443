package chart

import (
	"image"
	"image/color"
	"image/draw"
)

// cropTight trims rows and columns that only contain the background colour,
// keeping margin pixels around the content.
func cropTight(src image.Image, bg color.Color, margin int) image.Image {
	b := src.Bounds()
	content := image.Rectangle{Min: b.Max, Max: b.Min}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if sameColor(src.At(x, y), bg) {
				continue
			}
			if x < content.Min.X {
				content.Min.X = x
			}
			if y < content.Min.Y {
				content.Min.Y = y
			}
			if x+1 > content.Max.X {
				content.Max.X = x + 1
			}
			if y+1 > content.Max.Y {
				content.Max.Y = y + 1
			}
		}
	}
	if content.Empty() {
		return src
	}

	content = content.Inset(-margin).Intersect(b)
	if sub, ok := src.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(content)
	}

	dst := image.NewRGBA(image.Rect(0, 0, content.Dx(), content.Dy()))
	draw.Draw(dst, dst.Bounds(), src, content.Min, draw.Src)
	return dst
}

// sameColor compares colours with a small tolerance to absorb anti-aliasing noise.
func sameColor(a, b color.Color) bool {
	const tolerance = 0x0300
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return diff(ar, br) <= tolerance && diff(ag, bg) <= tolerance && diff(ab, bb) <= tolerance && diff(aa, ba) <= tolerance
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
