// Package imagemeta owns the image input boundary: it sniffs the pixel
// format of uploaded bytes, rejects everything outside the accepted set
// before any remote call is made, and extracts the dimensions that end up in
// the final record.
package imagemeta

import (
	"bytes"
	"fmt"
	"image"
	"net/http"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Format is a sniffed pixel format. Values match the "format" field of the
// output record exactly.
type Format string

const (
	FormatJPEG Format = "JPEG"
	FormatPNG  Format = "PNG"
	FormatWEBP Format = "WEBP"
)

// MIMEType returns the wire MIME type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWEBP:
		return "image/webp"
	}
	return ""
}

// Meta is the metadata extracted from an accepted image.
type Meta struct {
	Width  int
	Height int
	Format Format
}

// Asset is one uploaded image, owned by a single pipeline invocation.
type Asset struct {
	Data []byte
	Meta Meta
}

// UnsupportedFormatError reports bytes whose sniffed content type is not in
// the accepted set {JPEG, PNG, WEBP}.
type UnsupportedFormatError struct {
	Detected string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported image format %q (accepted: JPEG, PNG, WEBP)", e.Detected)
}

// Sniff determines the format from the leading bytes of data.
func Sniff(data []byte) (Format, error) {
	switch ct := http.DetectContentType(data); ct {
	case "image/jpeg":
		return FormatJPEG, nil
	case "image/png":
		return FormatPNG, nil
	case "image/webp":
		return FormatWEBP, nil
	default:
		return "", &UnsupportedFormatError{Detected: ct}
	}
}

// Load sniffs and decodes the header of data, returning an Asset ready for
// the analysis pipeline.
func Load(data []byte) (*Asset, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s header: %w", format, err)
	}
	return &Asset{
		Data: data,
		Meta: Meta{Width: cfg.Width, Height: cfg.Height, Format: format},
	}, nil
}
