package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(3, 1, color.NRGBA{B: 255, A: 255})

	rgba, format, err := Decode(encodePNG(t, src), "image/png", 0)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if rgba.Bounds().Dx() != 4 || rgba.Bounds().Dy() != 2 {
		t.Fatalf("size = %v, want 4x2", rgba.Bounds())
	}
	if got := rgba.RGBAAt(1, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (1,0) = %v, want red", got)
	}
	if got := rgba.RGBAAt(3, 1); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel (3,1) = %v, want blue", got)
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, hint := range []string{"", "face.tga"} {
		if _, _, err := Decode([]byte("not an image"), hint, 0); err == nil {
			t.Errorf("Decode(hint %q) accepted garbage", hint)
		}
	}
}

func TestToRGBAMovesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	src.SetRGBA(10, 10, color.RGBA{G: 200, A: 255})

	rgba := ToRGBA(src)
	if rgba.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds = %v, want origin 0,0 size 3x2", rgba.Bounds())
	}
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{G: 200, A: 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{64, 32, 0, 64, 32},
		{64, 32, 64, 64, 32},
		{64, 32, 16, 16, 8},
		{32, 64, 16, 8, 16},
		{1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		img := Fit(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.max)
		if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
			t.Errorf("Fit(%dx%d, %d) = %v, want %dx%d", tt.w, tt.h, tt.max, img.Bounds(), tt.wantW, tt.wantH)
		}
	}
}

func testImage() *image.NRGBA {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return src
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -8 && d <= 8
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encoding JPEG: %v", err)
	}
	rgba, format, err := Decode(buf.Bytes(), "image/jpeg", 0)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if format != FormatJPEG {
		t.Errorf("format = %q, want jpeg", format)
	}
	got := rgba.RGBAAt(4, 4)
	if !near(got.R, 200) || !near(got.G, 40) || !near(got.B, 90) || got.A != 255 {
		t.Errorf("pixel (4,4) = %v, want about {200 40 90 255}", got)
	}
}

func TestDecodeWebP(t *testing.T) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, testImage(), nil); err != nil {
		t.Fatalf("encoding WebP: %v", err)
	}
	rgba, format, err := Decode(buf.Bytes(), "", 0)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if format != FormatWebP {
		t.Errorf("format = %q, want webp", format)
	}
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{R: 200, G: 40, B: 90, A: 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
}

func TestDecodeTGA(t *testing.T) {
	var buf bytes.Buffer
	if err := tga.Encode(&buf, testImage()); err != nil {
		t.Fatalf("encoding TGA: %v", err)
	}
	for _, hint := range []string{"textures/face.TGA", ""} {
		rgba, format, err := Decode(buf.Bytes(), hint, 4)
		if err != nil {
			t.Fatalf("hint %q: Decode() error: %v", hint, err)
		}
		if format != FormatTGA {
			t.Errorf("hint %q: format = %q, want tga", hint, format)
		}
		if rgba.Bounds().Dx() != 4 || rgba.Bounds().Dy() != 4 {
			t.Errorf("hint %q: size = %v, want 4x4", hint, rgba.Bounds())
		}
	}
}

func TestDetect(t *testing.T) {
	tests := map[string]string{
		"\x89PNG\r\n\x1a\nrest":        FormatPNG,
		"\xff\xd8\xff\xe0rest":         FormatJPEG,
		"RIFF\x00\x00\x00\x00WEBPVP8L": FormatWebP,
		"RIFF\x00\x00\x00\x00WAVE":     FormatTGA,
		"":                             FormatTGA,
	}
	for data, want := range tests {
		if got := Detect([]byte(data)); got != want {
			t.Errorf("Detect(%q) = %q, want %q", data, got, want)
		}
	}
}

func TestIsTGAHint(t *testing.T) {
	tests := map[string]bool{
		"image/x-tga":   true,
		"image/tga":     true,
		"skin/face.tga": true,
		"FACE.TGA":      true,
		"image/png":     false,
		"face.png":      false,
		"":              false,
	}
	for hint, want := range tests {
		if got := IsTGAHint(hint); got != want {
			t.Errorf("IsTGAHint(%q) = %v, want %v", hint, got, want)
		}
	}
}
