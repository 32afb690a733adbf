package extractor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info is the basic header information of an image.
type Info struct {
	Width  int
	Height int
	Format string // upper case, e.g. "JPEG"
	Mode   string // colour mode, e.g. "RGB", "L", "P"
}

// Size renders the dimensions as "<w> x <h>".
func (i Info) Size() string {
	return fmt.Sprintf("%d x %d", i.Width, i.Height)
}

// ImageInfo decodes only the image header.
func ImageInfo(data []byte) (Info, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	return Info{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: strings.ToUpper(name),
		Mode:   colourMode(cfg.ColorModel),
	}, nil
}

// colourMode maps a decoder colour model onto the usual mode names. Go
// decoders report opaque truecolour as RGBA and straight alpha as NRGBA.
func colourMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.CMYKModel:
		return "CMYK"
	case color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	}
	return "RGB"
}
