// Package texture decodes glTF images into RGBA pixels ready for upload.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Formats reported by Detect and Decode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// The tga package registers an empty magic string with the image package,
// so image.Decode is not used; each format is decoded directly.
var decoders = map[string]func([]byte) (image.Image, error){
	FormatPNG:  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
	FormatJPEG: func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
	FormatWebP: func(b []byte) (image.Image, error) { return webp.Decode(bytes.NewReader(b)) },
	FormatTGA:  func(b []byte) (image.Image, error) { return tga.Decode(bytes.NewReader(b)) },
}

// Detect returns the format of data from its magic bytes. TGA has no
// signature, so data that matches nothing else is reported as TGA.
func Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return FormatJPEG
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWebP
	}
	return FormatTGA
}

// IsTGAHint reports whether a MIME type or URI names a TGA image.
func IsTGAHint(hint string) bool {
	h := strings.ToLower(hint)
	switch h {
	case "image/tga", "image/x-tga", "image/x-targa":
		return true
	}
	return path.Ext(h) == ".tga"
}

// Decode decodes PNG, JPEG, WebP or TGA data into RGBA. hint is the glTF
// MIME type or URI of the image and only shapes the error for unrecognised
// data. Images larger than maxSize on either side are scaled down to fit;
// maxSize <= 0 disables the limit.
func Decode(data []byte, hint string, maxSize int) (*image.RGBA, string, error) {
	format := Detect(data)
	img, err := decoders[format](data)
	if err != nil {
		if format == FormatTGA && !IsTGAHint(hint) {
			return nil, "", fmt.Errorf("decoding image: unknown format (%s fallback: %w)", FormatTGA, err)
		}
		return nil, "", fmt.Errorf("decoding %s image: %w", format, err)
	}
	return Fit(ToRGBA(img), maxSize), format, nil
}

// ToRGBA converts any image.Image to *image.RGBA with its origin at 0,0.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Fit scales img down, keeping its aspect ratio, until both sides are at
// most maxSize.
func Fit(img *image.RGBA, maxSize int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	nw, nh := maxSize, maxSize
	if w > h {
		nh = max(1, h*maxSize/w)
	} else {
		nw = max(1, w*maxSize/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
