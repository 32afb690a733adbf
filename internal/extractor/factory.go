package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/digimosa/exif-inspector/internal/metadata"
)

// Extraction is everything read from one image payload.
type Extraction struct {
	Format     Format
	Info       Info
	Flat       metadata.FlatView
	Namespaced metadata.NamespacedView
}

// Views pairs the two decoded views for the integrity rules.
func (e *Extraction) Views() metadata.Views {
	return metadata.Views{Flat: e.Flat, Namespaced: e.Namespaced}
}

// Factory decides which files are accepted and runs both decoders.
type Factory struct {
	allowed    map[string]bool
	flat       FlatDecoder
	namespaced NamespacedDecoder
}

// NewFactory creates a factory accepting the given extensions, with or
// without a leading dot. An empty list accepts every image extension.
func NewFactory(extensions []string) *Factory {
	f := &Factory{allowed: make(map[string]bool)}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			f.allowed[ext] = true
		}
	}
	return f
}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"tif": true, "tiff": true, "bmp": true, "webp": true,
}

// IsSupported checks the extension of a file name against the allow-list.
func (f *Factory) IsSupported(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}
	if len(f.allowed) == 0 {
		return imageExtensions[ext]
	}
	return f.allowed[ext]
}

// Extract sniffs the payload, reads its header and decodes both metadata
// views. Errors wrap ErrEmptyPayload, ErrUnsupportedFormat or
// ErrCorruptImage. A valid image without EXIF yields empty views.
func (f *Factory) Extract(data []byte) (*Extraction, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	info, err := ImageInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	block := LocateTIFF(data, format)
	return &Extraction{
		Format:     format,
		Info:       info,
		Flat:       f.flat.Decode(block),
		Namespaced: f.namespaced.Decode(block),
	}, nil
}
