package extractor

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/exif-inspector/internal/exiftest"
	"github.com/digimosa/exif-inspector/internal/metadata"
)

func cameraBuilder() *exiftest.Builder {
	return exiftest.New().
		Camera("Canon", "Canon EOS R5", "2024:01:15 14:30:25").
		ASCII(exiftest.IFD0, exiftest.TagSoftware, "Firmware 1.8.1").
		Rational(exiftest.ExifIFD, exiftest.TagExposureTime, 10, 600).
		Rational(exiftest.ExifIFD, exiftest.TagFNumber, 28, 10).
		Rational(exiftest.ExifIFD, exiftest.TagFocalLength, 50, 1).
		Short(exiftest.ExifIFD, exiftest.TagISO, 400).
		Short(exiftest.ExifIFD, exiftest.TagFlash, 16).
		Undefined(exiftest.ExifIFD, exiftest.TagExifVersion, []byte("0230")).
		Undefined(exiftest.ExifIFD, exiftest.TagMakerNote, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01})
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
		err  error
	}{
		{"empty", nil, "", ErrEmptyPayload},
		{"jpeg", exiftest.PlainJPEG(4, 4), FormatJPEG, nil},
		{"png", exiftest.PlainPNG(4, 4), FormatPNG, nil},
		{"gif", []byte("GIF89a......"), FormatGIF, nil},
		{"tiff little endian", []byte("II*\x00\x08\x00\x00\x00"), FormatTIFF, nil},
		{"tiff big endian", []byte("MM\x00*\x00\x00\x00\x08"), FormatTIFF, nil},
		{"bmp", []byte("BM\x00\x00"), FormatBMP, nil},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), FormatWEBP, nil},
		{"riff without webp", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), "", ErrUnsupportedFormat},
		{"text", []byte("hello world"), "", ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocateTIFF(t *testing.T) {
	b := cameraBuilder()
	block := b.TIFF()

	assert.Equal(t, block, LocateTIFF(b.JPEG(), FormatJPEG))
	assert.Equal(t, block, LocateTIFF(b.PNG(), FormatPNG))
	assert.Equal(t, block, LocateTIFF(block, FormatTIFF))

	assert.Nil(t, LocateTIFF(exiftest.PlainJPEG(4, 4), FormatJPEG))
	assert.Nil(t, LocateTIFF(exiftest.PlainPNG(4, 4), FormatPNG))
	assert.Nil(t, LocateTIFF([]byte("GIF89a"), FormatGIF))
}

func TestLocateTIFF_Truncated(t *testing.T) {
	jpg := cameraBuilder().JPEG()
	assert.Nil(t, LocateTIFF(jpg[:40], FormatJPEG))

	p := cameraBuilder().PNG()
	assert.Nil(t, LocateTIFF(p[:50], FormatPNG))
}

func TestLocateTIFF_WebP(t *testing.T) {
	block := cameraBuilder().TIFF()
	chunk := append([]byte("EXIF\x00\x00\x00\x00"), block...)
	chunk[4] = byte(len(block))
	chunk[5] = byte(len(block) >> 8)
	if len(block)%2 == 1 {
		chunk = append(chunk, 0)
	}
	data := append([]byte("RIFF\x00\x00\x00\x00WEBP"), []byte("VP8X\x0a\x00\x00\x00\x08\x00\x00\x00\x00\x00\x00\x00\x00\x00")...)
	data = append(data, chunk...)

	assert.Equal(t, block, LocateTIFF(data, FormatWEBP))
}

func TestNamespacedDecoder(t *testing.T) {
	block := cameraBuilder().
		ASCII(exiftest.GPSIFD, exiftest.TagGPSLatitudeRef, "N").
		Rational(exiftest.GPSIFD, exiftest.TagGPSLatitude, 39, 1, 54, 1, 1234, 100).
		ASCII(exiftest.InteropIFD, exiftest.TagInteropIndex, "R98").
		Short(exiftest.IFD1, 0x0103, 6).
		SRational(exiftest.ExifIFD, 0x9204, -2, 6).
		TIFF()

	view := NamespacedDecoder{}.Decode(block)

	assert.Equal(t, "Canon", view["Image Make"])
	assert.Equal(t, "Canon EOS R5", view["Image Model"])
	assert.Equal(t, "Firmware 1.8.1", view["Image Software"])
	assert.Equal(t, "2024:01:15 14:30:25", view["Image DateTime"])
	assert.Equal(t, "2024:01:15 14:30:25", view["EXIF DateTimeOriginal"])
	assert.Equal(t, "1/60", view["EXIF ExposureTime"])
	assert.Equal(t, "14/5", view["EXIF FNumber"])
	assert.Equal(t, "50", view["EXIF FocalLength"])
	assert.Equal(t, "400", view["EXIF ISOSpeedRatings"])
	assert.Equal(t, "16", view["EXIF Flash"])
	assert.Equal(t, "0230", view["EXIF ExifVersion"])
	assert.Equal(t, "-1/3", view["EXIF ExposureBiasValue"])
	assert.Equal(t, "N", view["GPS GPSLatitudeRef"])
	assert.Equal(t, "[39, 54, 617/50]", view["GPS GPSLatitude"])
	assert.Equal(t, "R98", view["Interoperability InteroperabilityIndex"])
	assert.Equal(t, "6", view["Thumbnail Compression"])
	assert.Contains(t, view, "Image ExifOffset")

	assert.NotContains(t, view, "EXIF MakerNote")
}

func TestNamespacedDecoder_BigEndian(t *testing.T) {
	block := exiftest.New().BigEndian().
		ASCII(exiftest.IFD0, exiftest.TagMake, "NIKON CORPORATION").
		Short(exiftest.ExifIFD, exiftest.TagISO, 25600).
		TIFF()

	view := NamespacedDecoder{}.Decode(block)
	assert.Equal(t, "NIKON CORPORATION", view["Image Make"])
	assert.Equal(t, "25600", view["EXIF ISOSpeedRatings"])
}

func TestNamespacedDecoder_UnknownTag(t *testing.T) {
	block := exiftest.New().Short(exiftest.IFD0, 0xBEEF, 7).TIFF()
	assert.Equal(t, "7", NamespacedDecoder{}.Decode(block)["Image Tag 0xBEEF"])
}

func TestNamespacedDecoder_Malformed(t *testing.T) {
	t.Run("out of bounds value is dropped", func(t *testing.T) {
		block := exiftest.New().
			ASCII(exiftest.IFD0, exiftest.TagMake, "Sony").
			Raw(exiftest.IFD0, exiftest.TagModel, exiftest.TypeASCII, 1000, []byte("ab\x00")).
			TIFF()

		view := NamespacedDecoder{}.Decode(block)
		assert.Equal(t, "Sony", view["Image Make"])
		assert.NotContains(t, view, "Image Model")
	})

	t.Run("directory loop terminates", func(t *testing.T) {
		block := []byte{
			'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00,
			0x01, 0x00,
			0x69, 0x87, 0x04, 0x00, 0x01, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00,
			0x08, 0x00, 0x00, 0x00,
		}
		view := NamespacedDecoder{}.Decode(block)
		assert.Equal(t, metadata.NamespacedView{"Image ExifOffset": "8"}, view)
	})

	t.Run("truncated block", func(t *testing.T) {
		block := cameraBuilder().TIFF()
		assert.NotPanics(t, func() {
			for n := 0; n < len(block); n += 7 {
				NamespacedDecoder{}.Decode(block[:n])
			}
		})
	})

	t.Run("not tiff", func(t *testing.T) {
		assert.Empty(t, NamespacedDecoder{}.Decode([]byte("definitely not a tiff")))
		assert.Empty(t, NamespacedDecoder{}.Decode(nil))
	})
}

func TestFlatDecoder(t *testing.T) {
	view := FlatDecoder{}.Decode(cameraBuilder().TIFF())

	assert.Equal(t, "Canon", view["Make"])
	assert.Equal(t, "Canon EOS R5", view["Model"])
	assert.Equal(t, "Firmware 1.8.1", view["Software"])
	assert.Equal(t, "2024:01:15 14:30:25", view["DateTime"])
	assert.Equal(t, "2024:01:15 14:30:25", view["DateTimeOriginal"])
	assert.Equal(t, metadata.Rational{Num: 10, Den: 600}, view["ExposureTime"])
	assert.Equal(t, metadata.Rational{Num: 28, Den: 10}, view["FNumber"])
	assert.Equal(t, 400, view["ISOSpeedRatings"])
	assert.Equal(t, "0230", view["ExifVersion"])

	assert.NotContains(t, view, "MakerNote")
	assert.NotContains(t, view, "ExifIFDPointer")
}

func TestFlatDecoder_NoExif(t *testing.T) {
	assert.Empty(t, FlatDecoder{}.Decode(nil))
	assert.Empty(t, FlatDecoder{}.Decode([]byte("II*\x00garbage")))
}

func TestFlatDecoder_OversizedCount(t *testing.T) {
	for _, b := range []*exiftest.Builder{cameraBuilder(), cameraBuilder().BigEndian()} {
		block := b.TIFF()
		require.True(t, exiftest.PatchCount(block, exiftest.TagFocalLength, 5, 0x20000001))

		assert.NotPanics(t, func() {
			assert.Empty(t, FlatDecoder{}.Decode(block))
		})

		view := NamespacedDecoder{}.Decode(block)
		assert.Equal(t, "Canon", view["Image Make"])
		assert.NotContains(t, view, "EXIF FocalLength")
	}
}

func TestFlatDecoder_BrokenChain(t *testing.T) {
	block := []byte{
		'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00,
		0x01, 0x00,
		0x0F, 0x01, 0x02, 0x00, 0x02, 0x00, 0x00, 0x00, 'X', 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00,
	}
	assert.Empty(t, FlatDecoder{}.Decode(block), "a directory loop")

	block[22] = 0xF0
	assert.Empty(t, FlatDecoder{}.Decode(block), "a next pointer past the end")
}

func TestImageInfo(t *testing.T) {
	info, err := ImageInfo(exiftest.PlainJPEG(8, 6))
	require.NoError(t, err)
	assert.Equal(t, Info{Width: 8, Height: 6, Format: "JPEG", Mode: "RGB"}, info)
	assert.Equal(t, "8 x 6", info.Size())

	info, err = ImageInfo(exiftest.PlainPNG(3, 2))
	require.NoError(t, err)
	assert.Equal(t, "PNG", info.Format)
	assert.Equal(t, "RGB", info.Mode)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	info, err = ImageInfo(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "L", info.Mode)

	buf.Reset()
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, pal, nil))
	info, err = ImageInfo(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, Info{Width: 2, Height: 2, Format: "GIF", Mode: "P"}, info)

	_, err = ImageInfo([]byte{0xFF, 0xD8, 0xFF, 0x00})
	assert.Error(t, err)
}

func TestFactory_Extract(t *testing.T) {
	f := NewFactory(nil)

	ex, err := f.Extract(cameraBuilder().JPEG())
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, ex.Format)
	assert.Equal(t, "JPEG", ex.Info.Format)
	assert.Equal(t, "Canon", ex.Flat["Make"])
	assert.Equal(t, "Canon", ex.Namespaced["Image Make"])
	assert.Equal(t, "Canon", ex.Views().Lookup("Make").String())

	ex, err = f.Extract(exiftest.PlainPNG(4, 4))
	require.NoError(t, err)
	assert.True(t, ex.Views().Empty())

	_, err = f.Extract(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = f.Extract([]byte("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = f.Extract([]byte{0xFF, 0xD8, 0xFF, 0x00, 0x01})
	assert.ErrorIs(t, err, ErrCorruptImage)
	assert.Contains(t, err.Error(), "corrupt image: ")
}

func TestFactory_IsSupported(t *testing.T) {
	f := NewFactory([]string{"png", ".JPG", "jpeg"})
	assert.True(t, f.IsSupported("a.png"))
	assert.True(t, f.IsSupported("dir/B.JPG"))
	assert.True(t, f.IsSupported("c.jpeg"))
	assert.False(t, f.IsSupported("d.gif"))
	assert.False(t, f.IsSupported("noext"))

	all := NewFactory(nil)
	assert.True(t, all.IsSupported("x.webp"))
	assert.False(t, all.IsSupported("x.pdf"))
}
