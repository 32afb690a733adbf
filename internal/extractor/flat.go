package extractor

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/digimosa/exif-inspector/internal/metadata"
)

// FlatDecoder builds the flat view, keyed by bare tag name, using goexif.
type FlatDecoder struct{}

// flatSkip are structural tags that say nothing about the capture.
var flatSkip = map[exif.FieldName]bool{
	exif.ExifIFDPointer:                   true,
	exif.GPSInfoIFDPointer:                true,
	exif.InteroperabilityIFDPointer:       true,
	exif.ThumbJPEGInterchangeFormat:       true,
	exif.ThumbJPEGInterchangeFormatLength: true,
	exif.MakerNote:                        true,
}

// Decode parses a TIFF block. A nil, missing or badly broken block yields
// an empty view; tags that fail to decode are dropped individually.
func (FlatDecoder) Decode(block []byte) (view metadata.FlatView) {
	view = metadata.FlatView{}
	if len(block) == 0 || !fitsBlock(block) {
		return view
	}
	defer func() {
		// goexif indexes into attacker-controlled offsets.
		if recover() != nil {
			view = metadata.FlatView{}
		}
	}()

	x, err := exif.Decode(bytes.NewReader(block))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return view
	}
	_ = x.Walk(flatWalker(view))
	return view
}

// fitsBlock reports whether every directory goexif would read is intact
// and declares values no larger than block. goexif sizes its buffers from
// the declared count before checking it against the data, so an oversized
// count exhausts memory rather than failing.
func fitsBlock(block []byte) bool {
	order, ok := byteOrder(block)
	if !ok {
		return false
	}
	type dir struct {
		off   uint32
		chain bool
	}
	limit := uint64(len(block))
	queue := []dir{{off: order.Uint32(block[4:8]), chain: true}}
	seen := make(map[uint32]bool)
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		if d.off < 8 || seen[d.off] || len(seen) >= maxIFDs || uint64(d.off)+2 > limit {
			return false
		}
		seen[d.off] = true

		entries, next, complete := readIFD(block, d.off, order)
		if !complete {
			return false
		}
		for _, e := range entries {
			if int(e.typ) < len(typeSizes) && uint64(typeSizes[e.typ])*uint64(e.count) > limit {
				return false
			}
			switch e.tag {
			case tagExifIFD, tagGPSIFD, tagInteropIFD:
				if e.count == 1 && (e.typ == typeLong || e.typ == 13) {
					queue = append(queue, dir{off: e.offset})
				}
			}
		}
		// goexif follows the next pointer of the main chain only.
		if d.chain && next != 0 {
			queue = append(queue, dir{off: next, chain: true})
		}
	}
	return true
}

type flatWalker metadata.FlatView

func (w flatWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if flatSkip[name] || tag == nil {
		return nil
	}
	if v, ok := tagValue(tag); ok {
		w[string(name)] = v
	}
	return nil
}

// tagValue converts a tag into a native value: string, int, float64,
// metadata.Rational, or []any when the tag holds several values.
func tagValue(tag *tiff.Tag) (any, bool) {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return nil, false
		}
		return strings.TrimSpace(strings.TrimRight(s, "\x00")), true

	case tiff.UndefVal:
		if utf8.Valid(tag.Val) {
			return strings.TrimSpace(strings.TrimRight(string(tag.Val), "\x00")), true
		}
		return append([]byte(nil), tag.Val...), true
	}

	n := int(tag.Count)
	if n == 0 {
		return nil, false
	}
	vals := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, ok := tagElement(tag, i)
		if !ok {
			return nil, false
		}
		vals = append(vals, v)
	}
	if n == 1 {
		return vals[0], true
	}
	return vals, true
}

func tagElement(tag *tiff.Tag, i int) (any, bool) {
	switch tag.Format() {
	case tiff.IntVal:
		v, err := tag.Int64(i)
		return int(v), err == nil
	case tiff.RatVal:
		num, den, err := tag.Rat2(i)
		return metadata.Rational{Num: num, Den: den}, err == nil
	case tiff.FloatVal:
		v, err := tag.Float(i)
		return v, err == nil
	}
	return nil, false
}
