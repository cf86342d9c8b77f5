package image

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	t.Run("valid png", func(t *testing.T) {
		format, err := v.Validate(encodePNG(t), "png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if format != "png" {
			t.Errorf("expected png, got %s", format)
		}
	})

	t.Run("valid jpeg with jpg hint", func(t *testing.T) {
		format, err := v.Validate(encodeJPEG(t), "jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if format != "jpeg" {
			t.Errorf("expected jpeg, got %s", format)
		}
	})

	t.Run("no declared format", func(t *testing.T) {
		if _, err := v.Validate(encodePNG(t), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		if _, err := v.Validate(nil, ""); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		big := make([]byte, MaxFileSize+1)
		copy(big, imageSignatures["png"])
		if _, err := v.Validate(big, ""); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unrecognized format", func(t *testing.T) {
		if _, err := v.Validate([]byte("definitely not an image"), ""); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("declared format mismatch", func(t *testing.T) {
		if _, err := v.Validate(encodePNG(t), "jpeg"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("signature without decodable body", func(t *testing.T) {
		fake := append([]byte{}, imageSignatures["png"]...)
		fake = append(fake, []byte("garbage body")...)
		if _, err := v.Validate(fake, "png"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDetectFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"frame.jpg", "jpeg"},
		{"frame.JPEG", "jpeg"},
		{"frame.png", "png"},
		{"frame.gif", "gif"},
		{"frame.webp", "webp"},
		{"frame.bmp", "bmp"},
		{"frame.tiff", ""},
		{"frame", ""},
	}

	for _, tt := range tests {
		if got := DetectFormatFromFilename(tt.filename); got != tt.want {
			t.Errorf("DetectFormatFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
