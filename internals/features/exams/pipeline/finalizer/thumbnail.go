// file: internals/features/exams/pipeline/finalizer/thumbnail.go
package finalizer

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

const (
	thumbMaxW    = 480
	thumbMaxH    = 360
	thumbQuality = 75
)

// EncodeThumbnailWebP: snapshot JPEG dari engine → downscale → WebP.
// Ukuran kecil saja; thumbnail hanya untuk listing di client.
func EncodeThumbnailWebP(jpegPath string) ([]byte, error) {
	img, err := imaging.Open(jpegPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", jpegPath, err)
	}

	img = downscaleIfNeeded(img, thumbMaxW, thumbMaxH)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale keep-aspect, CatmullRom (kualitas bagus)
func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
