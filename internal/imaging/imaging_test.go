package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 160, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessAcceptsJPEGAndPNG(t *testing.T) {
	for name, data := range map[string][]byte{
		"jpeg": encodeJPEG(t, 120, 80),
		"png":  encodePNG(t, 120, 80),
	} {
		result, err := Process(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Process %s: %v", name, err)
		}
		if result.MIME != "image/jpeg" {
			t.Errorf("%s: expected image/jpeg output, got %s", name, result.MIME)
		}
		if len(result.Data) == 0 {
			t.Errorf("%s: expected non-empty data", name)
		}
	}
}

func TestProcessDownscalesLargePhotos(t *testing.T) {
	result, err := Process(bytes.NewReader(encodeJPEG(t, 2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		t.Errorf("expected max %d on each side, got %dx%d", MaxDimension, b.Dx(), b.Dy())
	}
	// Aspect ratio preserved: 2:1 input stays 2:1.
	if b.Dx() != 2*b.Dy() {
		t.Errorf("expected 2:1 aspect, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessKeepsSmallPhotos(t *testing.T) {
	result, err := Process(bytes.NewReader(encodeJPEG(t, 64, 48)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("small photo resized to %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestProcessRejectsOtherFormats(t *testing.T) {
	for name, data := range map[string][]byte{
		"text": []byte("definitely not an image"),
		"gif":  []byte("GIF89a..."),
	} {
		if _, err := Process(bytes.NewReader(data)); err == nil {
			t.Errorf("%s: expected rejection", name)
		}
	}
}
