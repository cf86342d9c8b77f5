// Package image validates uploaded still frames before they are sent to
// the vision model.
package image

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"rayee-server-go/internal/platform/errors"
)

// MaxFileSize caps a single upload at 5MB.
const MaxFileSize = 5 * 1024 * 1024

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"jpg":  {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
	"bmp":  {0x42, 0x4D},
}

// Validator performs layered checks against incoming image payloads:
// size cap, magic-byte format sniff and a decode pass.
type Validator struct {
	maxFileSize int64
}

// NewValidator constructs a validator with the default size cap.
func NewValidator() *Validator {
	return &Validator{maxFileSize: MaxFileSize}
}

// Validate checks raw upload bytes and returns the detected format.
func (v *Validator) Validate(raw []byte, declaredFormat string) (string, error) {
	if len(raw) == 0 {
		return "", errors.New(errors.KindTransport, "image.validate", "empty image payload")
	}

	if int64(len(raw)) > v.maxFileSize {
		return "", errors.New(errors.KindTransport, "image.validate",
			fmt.Sprintf("image exceeds max size of %d bytes", v.maxFileSize))
	}

	format := detectFormat(raw)
	if format == "" {
		return "", errors.New(errors.KindTransport, "image.validate", "unrecognized image format")
	}

	if declaredFormat != "" && !formatsMatch(declaredFormat, format) {
		return "", errors.New(errors.KindTransport, "image.validate",
			fmt.Sprintf("declared format %s does not match detected %s", declaredFormat, format))
	}

	// bmp has no stdlib decoder; the signature check is all we get.
	if format != "bmp" {
		if _, _, err := image.Decode(bytes.NewReader(raw)); err != nil {
			return "", errors.Wrap(errors.KindTransport, "image.validate", "image does not decode", err)
		}
	}

	return format, nil
}

// DetectFormatFromFilename maps a filename extension to a format hint.
func DetectFormatFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "png"
	case strings.HasSuffix(lower, ".gif"):
		return "gif"
	case strings.HasSuffix(lower, ".bmp"):
		return "bmp"
	case strings.HasSuffix(lower, ".webp"):
		return "webp"
	default:
		return ""
	}
}

func detectFormat(raw []byte) string {
	for _, format := range []string{"png", "jpeg", "gif", "webp", "bmp"} {
		sig := imageSignatures[format]
		if len(raw) >= len(sig) && bytes.Equal(raw[:len(sig)], sig) {
			return format
		}
	}
	return ""
}

func formatsMatch(declared, detected string) bool {
	d := strings.ToLower(declared)
	if d == "jpg" {
		d = "jpeg"
	}
	return d == detected
}
