package extractor

import (
	"bytes"
	"errors"
)

var (
	// ErrEmptyPayload is returned for a zero-length image.
	ErrEmptyPayload = errors.New("image data is empty")
	// ErrUnsupportedFormat is returned when no known magic number matches.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrCorruptImage wraps header decode failures of a recognised format.
	ErrCorruptImage = errors.New("corrupt image")
)

// Format is a container format recognised by its magic number.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
	FormatWEBP Format = "webp"
)

var (
	magicJPEG   = []byte{0xFF, 0xD8, 0xFF}
	magicPNG    = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	magicGIF87  = []byte("GIF87a")
	magicGIF89  = []byte("GIF89a")
	magicTIFFLE = []byte{'I', 'I', 0x2A, 0x00}
	magicTIFFBE = []byte{'M', 'M', 0x00, 0x2A}
	magicBMP    = []byte("BM")
	magicRIFF   = []byte("RIFF")
	magicWEBP   = []byte("WEBP")
)

// Sniff identifies the container format of data.
func Sniff(data []byte) (Format, error) {
	switch {
	case len(data) == 0:
		return "", ErrEmptyPayload
	case bytes.HasPrefix(data, magicJPEG):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, magicPNG):
		return FormatPNG, nil
	case bytes.HasPrefix(data, magicGIF87), bytes.HasPrefix(data, magicGIF89):
		return FormatGIF, nil
	case bytes.HasPrefix(data, magicTIFFLE), bytes.HasPrefix(data, magicTIFFBE):
		return FormatTIFF, nil
	case len(data) >= 12 && bytes.HasPrefix(data, magicRIFF) && bytes.Equal(data[8:12], magicWEBP):
		return FormatWEBP, nil
	case bytes.HasPrefix(data, magicBMP):
		return FormatBMP, nil
	}
	return "", ErrUnsupportedFormat
}
