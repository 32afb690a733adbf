// Package exiftest synthesizes TIFF, JPEG and PNG payloads carrying EXIF
// directories, for use in tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"sort"
)

// IFD selects the directory an entry is written to.
type IFD int

const (
	IFD0 IFD = iota
	ExifIFD
	GPSIFD
	InteropIFD
	IFD1
)

// TIFF field types.
const (
	TypeByte      uint16 = 1
	TypeASCII     uint16 = 2
	TypeShort     uint16 = 3
	TypeLong      uint16 = 4
	TypeRational  uint16 = 5
	TypeUndefined uint16 = 7
	TypeSRational uint16 = 10
	TypeDouble    uint16 = 12
)

// Commonly used tag ids.
const (
	TagProcessingSoftware uint16 = 0x000B
	TagMake               uint16 = 0x010F
	TagModel              uint16 = 0x0110
	TagOrientation        uint16 = 0x0112
	TagSoftware           uint16 = 0x0131
	TagDateTime           uint16 = 0x0132
	TagHostComputer       uint16 = 0x013C
	TagExifPointer        uint16 = 0x8769
	TagGPSPointer         uint16 = 0x8825
	TagExposureTime       uint16 = 0x829A
	TagFNumber            uint16 = 0x829D
	TagISO                uint16 = 0x8827
	TagExifVersion        uint16 = 0x9000
	TagDateTimeOriginal   uint16 = 0x9003
	TagDateTimeDigitized  uint16 = 0x9004
	TagMeteringMode       uint16 = 0x9207
	TagFlash              uint16 = 0x9209
	TagFocalLength        uint16 = 0x920A
	TagMakerNote          uint16 = 0x927C
	TagInteropPointer     uint16 = 0xA005
	TagExposureMode       uint16 = 0xA402
	TagWhiteBalance       uint16 = 0xA403
	TagLensMake           uint16 = 0xA433
	TagLensModel          uint16 = 0xA434
	TagGPSLatitudeRef     uint16 = 0x0001
	TagGPSLatitude        uint16 = 0x0002
	TagInteropIndex       uint16 = 0x0001
)

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// Builder accumulates IFD entries and serializes them. The zero value is
// not usable; call New.
type Builder struct {
	order binary.ByteOrder
	ifds  map[IFD][]entry
}

// New returns a little-endian builder.
func New() *Builder {
	return &Builder{order: binary.LittleEndian, ifds: make(map[IFD][]entry)}
}

// BigEndian switches the output to Motorola byte order.
func (b *Builder) BigEndian() *Builder {
	b.order = binary.BigEndian
	return b
}

// Raw adds an entry with pre-encoded data. count is written as given, so
// it can disagree with len(data) to produce malformed directories.
func (b *Builder) Raw(ifd IFD, tag, typ uint16, count uint32, data []byte) *Builder {
	b.ifds[ifd] = append(b.ifds[ifd], entry{tag: tag, typ: typ, count: count, data: data})
	return b
}

// ASCII adds a NUL-terminated string.
func (b *Builder) ASCII(ifd IFD, tag uint16, s string) *Builder {
	data := append([]byte(s), 0)
	return b.Raw(ifd, tag, TypeASCII, uint32(len(data)), data)
}

// Byte adds one or more BYTE values.
func (b *Builder) Byte(ifd IFD, tag uint16, vals ...byte) *Builder {
	return b.Raw(ifd, tag, TypeByte, uint32(len(vals)), append([]byte(nil), vals...))
}

// Short adds one or more SHORT values.
func (b *Builder) Short(ifd IFD, tag uint16, vals ...uint16) *Builder {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		b.order.PutUint16(data[2*i:], v)
	}
	return b.Raw(ifd, tag, TypeShort, uint32(len(vals)), data)
}

// Long adds one or more LONG values.
func (b *Builder) Long(ifd IFD, tag uint16, vals ...uint32) *Builder {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		b.order.PutUint32(data[4*i:], v)
	}
	return b.Raw(ifd, tag, TypeLong, uint32(len(vals)), data)
}

// Rational adds RATIONAL values given as num, den pairs.
func (b *Builder) Rational(ifd IFD, tag uint16, pairs ...uint32) *Builder {
	data := make([]byte, 4*len(pairs))
	for i, v := range pairs {
		b.order.PutUint32(data[4*i:], v)
	}
	return b.Raw(ifd, tag, TypeRational, uint32(len(pairs)/2), data)
}

// SRational adds one signed rational.
func (b *Builder) SRational(ifd IFD, tag uint16, num, den int32) *Builder {
	data := make([]byte, 8)
	b.order.PutUint32(data, uint32(num))
	b.order.PutUint32(data[4:], uint32(den))
	return b.Raw(ifd, tag, TypeSRational, 1, data)
}

// Double adds one DOUBLE value.
func (b *Builder) Double(ifd IFD, tag uint16, v float64) *Builder {
	data := make([]byte, 8)
	b.order.PutUint64(data, math.Float64bits(v))
	return b.Raw(ifd, tag, TypeDouble, 1, data)
}

// Undefined adds an UNDEFINED blob.
func (b *Builder) Undefined(ifd IFD, tag uint16, data []byte) *Builder {
	return b.Raw(ifd, tag, TypeUndefined, uint32(len(data)), data)
}

// Camera adds the usual IFD0 identity fields plus a capture timestamp.
func (b *Builder) Camera(mk, model, dateTime string) *Builder {
	return b.ASCII(IFD0, TagMake, mk).
		ASCII(IFD0, TagModel, model).
		ASCII(IFD0, TagDateTime, dateTime).
		ASCII(ExifIFD, TagDateTimeOriginal, dateTime)
}

var layoutOrder = []IFD{IFD0, ExifIFD, GPSIFD, InteropIFD, IFD1}

// TIFF serializes the directories into a standalone TIFF structure.
func (b *Builder) TIFF() []byte {
	dirs := make(map[IFD][]entry, len(b.ifds))
	for ifd, es := range b.ifds {
		dirs[ifd] = append([]entry(nil), es...)
	}
	hasExif := len(dirs[ExifIFD]) > 0 || len(dirs[InteropIFD]) > 0
	placeholder := make([]byte, 4)
	if hasExif {
		dirs[IFD0] = append(dirs[IFD0], entry{tag: TagExifPointer, typ: TypeLong, count: 1, data: placeholder})
	}
	if len(dirs[GPSIFD]) > 0 {
		dirs[IFD0] = append(dirs[IFD0], entry{tag: TagGPSPointer, typ: TypeLong, count: 1, data: placeholder})
	}
	if len(dirs[InteropIFD]) > 0 {
		dirs[ExifIFD] = append(dirs[ExifIFD], entry{tag: TagInteropPointer, typ: TypeLong, count: 1, data: placeholder})
	}

	var present []IFD
	for _, ifd := range layoutOrder {
		if ifd == IFD0 || len(dirs[ifd]) > 0 {
			sort.SliceStable(dirs[ifd], func(i, j int) bool { return dirs[ifd][i].tag < dirs[ifd][j].tag })
			present = append(present, ifd)
		}
	}

	// Lay out each directory followed by its out-of-line values.
	offsets := make(map[IFD]uint32)
	valueAt := make(map[IFD][]uint32)
	pos := uint32(8)
	for _, ifd := range present {
		offsets[ifd] = pos
		pos += 2 + 12*uint32(len(dirs[ifd])) + 4
		at := make([]uint32, len(dirs[ifd]))
		for i, e := range dirs[ifd] {
			if len(e.data) > 4 {
				at[i] = pos
				pos += uint32(len(e.data))
				if pos%2 == 1 {
					pos++
				}
			}
		}
		valueAt[ifd] = at
	}

	pointers := map[uint16]IFD{TagExifPointer: ExifIFD, TagGPSPointer: GPSIFD, TagInteropPointer: InteropIFD}

	out := make([]byte, pos)
	if b.order == binary.BigEndian {
		copy(out, "MM")
	} else {
		copy(out, "II")
	}
	b.order.PutUint16(out[2:], 42)
	b.order.PutUint32(out[4:], 8)

	for _, ifd := range present {
		es := dirs[ifd]
		p := offsets[ifd]
		b.order.PutUint16(out[p:], uint16(len(es)))
		p += 2
		for i, e := range es {
			if target, ok := pointers[e.tag]; ok && e.typ == TypeLong && isPointerHost(ifd, e.tag) {
				e.data = make([]byte, 4)
				b.order.PutUint32(e.data, offsets[target])
			}
			b.order.PutUint16(out[p:], e.tag)
			b.order.PutUint16(out[p+2:], e.typ)
			b.order.PutUint32(out[p+4:], e.count)
			if len(e.data) > 4 {
				b.order.PutUint32(out[p+8:], valueAt[ifd][i])
				copy(out[valueAt[ifd][i]:], e.data)
			} else {
				copy(out[p+8:p+12], e.data)
			}
			p += 12
		}
		if ifd == IFD0 && len(dirs[IFD1]) > 0 {
			b.order.PutUint32(out[p:], offsets[IFD1])
		}
	}
	return out
}

func isPointerHost(ifd IFD, tag uint16) bool {
	switch tag {
	case TagExifPointer, TagGPSPointer:
		return ifd == IFD0
	case TagInteropPointer:
		return ifd == ExifIFD
	}
	return false
}

// JPEG returns a small baseline JPEG with the directories in an APP1
// segment directly after SOI.
func (b *Builder) JPEG() []byte {
	return SpliceAPP1(PlainJPEG(8, 6), b.TIFF())
}

// PNG returns a small PNG with the directories in an eXIf chunk after IHDR.
func (b *Builder) PNG() []byte {
	return SpliceEXIf(PlainPNG(8, 6), b.TIFF())
}

// PlainJPEG encodes a w x h image without any metadata.
func PlainJPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PlainPNG encodes a w x h image without any metadata.
func PlainPNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	return img
}

// PatchCount rewrites the declared count of the first directory entry in
// tiff with the given tag and type, leaving its value bytes untouched. It
// returns false when no such entry exists.
func PatchCount(tiff []byte, tag, typ uint16, count uint32) bool {
	if len(tiff) < 8 {
		return false
	}
	var order binary.ByteOrder = binary.LittleEndian
	if string(tiff[:2]) == "MM" {
		order = binary.BigEndian
	}
	head := make([]byte, 4)
	order.PutUint16(head, tag)
	order.PutUint16(head[2:], typ)
	for i := 8; i+12 <= len(tiff); i++ {
		if bytes.Equal(tiff[i:i+4], head) {
			order.PutUint32(tiff[i+4:], count)
			return true
		}
	}
	return false
}

// SpliceAPP1 inserts an Exif APP1 segment holding tiff after the SOI marker.
func SpliceAPP1(jpg, tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}

// SpliceEXIf inserts an eXIf chunk holding tiff after the IHDR chunk.
func SpliceEXIf(p, tiff []byte) []byte {
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	chunk := make([]byte, 8, 12+len(tiff))
	binary.BigEndian.PutUint32(chunk, uint32(len(tiff)))
	copy(chunk[4:], "eXIf")
	chunk = append(chunk, tiff...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	chunk = binary.BigEndian.AppendUint32(chunk, crc)

	out := make([]byte, 0, len(p)+len(chunk))
	out = append(out, p[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, p[ihdrEnd:]...)
}
