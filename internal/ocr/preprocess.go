package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// prepareFullPage mirrors the capture pipeline the extraction heuristics
// were tuned on: grayscale, then a 2x upscale before the full-page pass.
func prepareFullPage(src image.Image) image.Image {
	gray := imaging.Grayscale(src)
	b := gray.Bounds()
	return imaging.Resize(gray, b.Dx()*2, b.Dy()*2, imaging.Linear)
}

// brandStrip crops the top fifth of the receipt, where the merchant logo
// or printed brand name usually sits.
func brandStrip(src image.Image) image.Image {
	b := src.Bounds()
	crop := imaging.Crop(src, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+b.Dy()/5))
	return imaging.Grayscale(crop)
}

// amountStrip crops the bottom 30%, where totals cluster.
func amountStrip(src image.Image) image.Image {
	b := src.Bounds()
	crop := imaging.Crop(src, image.Rect(b.Min.X, b.Max.Y-b.Dy()*3/10, b.Max.X, b.Max.Y))
	return imaging.Grayscale(crop)
}
