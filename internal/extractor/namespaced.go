package extractor

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/digimosa/exif-inspector/internal/metadata"
)

// maxIFDs bounds the number of directories visited in one block.
const maxIFDs = 16

// typeSizes holds the byte width of each TIFF field type.
var typeSizes = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeSByte     = 6
	typeUndefined = 7
	typeSShort    = 8
	typeSLong     = 9
	typeSRational = 10
	typeFloat     = 11
	typeDouble    = 12
)

// NamespacedDecoder builds the namespaced view, keyed "<Group> <Tag>",
// with every value rendered to a string.
type NamespacedDecoder struct{}

type ifdRef struct {
	group  string
	offset uint32
}

type ifdEntry struct {
	tag    uint16
	typ    uint16
	count  uint32
	inline []byte
	offset uint32
}

// Decode walks IFD0, its sub-directories and IFD1. Invalid offsets, loops
// and directories beyond maxIFDs end the walk; what was read so far is kept.
func (NamespacedDecoder) Decode(block []byte) metadata.NamespacedView {
	view := metadata.NamespacedView{}
	order, ok := byteOrder(block)
	if !ok {
		return view
	}

	queue := []ifdRef{{group: metadata.GroupImage, offset: order.Uint32(block[4:8])}}
	seen := make(map[uint32]bool)
	for visited := 0; len(queue) > 0 && visited < maxIFDs; {
		ref := queue[0]
		queue = queue[1:]
		if ref.offset < 8 || seen[ref.offset] || uint64(ref.offset)+2 > uint64(len(block)) {
			continue
		}
		seen[ref.offset] = true
		visited++

		entries, next, complete := readIFD(block, ref.offset, order)
		names := tagTable(ref.group)
		for _, e := range entries {
			if sub, ok := subIFD(ref.group, e, order); ok {
				queue = append(queue, sub)
			}
			if ref.group == metadata.GroupEXIF && e.tag == tagMakerNote {
				continue
			}
			s, ok := renderEntry(block, e, order)
			if !ok {
				continue
			}
			name, known := names[e.tag]
			if !known {
				name = fmt.Sprintf("Tag 0x%04X", e.tag)
			}
			view[metadata.Key(ref.group, name)] = s
		}
		if ref.group == metadata.GroupImage && complete && next != 0 {
			queue = append(queue, ifdRef{group: metadata.GroupThumb, offset: next})
		}
	}
	return view
}

// byteOrder reads the TIFF header of block.
func byteOrder(block []byte) (binary.ByteOrder, bool) {
	if len(block) < 8 {
		return nil, false
	}
	var order binary.ByteOrder
	switch string(block[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, false
	}
	return order, order.Uint16(block[2:4]) == 42
}

// readIFD reads the entries of the directory at off. complete is false when
// the directory runs past the end of block, in which case next is unset.
func readIFD(block []byte, off uint32, order binary.ByteOrder) (entries []ifdEntry, next uint32, complete bool) {
	n := int(order.Uint16(block[off : off+2]))
	pos := int(off) + 2
	for i := 0; i < n; i++ {
		if pos+12 > len(block) {
			return entries, 0, false
		}
		raw := block[pos : pos+12]
		entries = append(entries, ifdEntry{
			tag:    order.Uint16(raw[0:2]),
			typ:    order.Uint16(raw[2:4]),
			count:  order.Uint32(raw[4:8]),
			inline: raw[8:12],
			offset: order.Uint32(raw[8:12]),
		})
		pos += 12
	}
	if pos+4 > len(block) {
		return entries, 0, false
	}
	return entries, order.Uint32(block[pos : pos+4]), true
}

func subIFD(group string, e ifdEntry, order binary.ByteOrder) (ifdRef, bool) {
	if e.count != 1 || (e.typ != typeLong && e.typ != 13) {
		return ifdRef{}, false
	}
	switch {
	case group == metadata.GroupImage && e.tag == tagExifIFD:
		return ifdRef{group: metadata.GroupEXIF, offset: e.offset}, true
	case group == metadata.GroupImage && e.tag == tagGPSIFD:
		return ifdRef{group: metadata.GroupGPS, offset: e.offset}, true
	case group == metadata.GroupEXIF && e.tag == tagInteropIFD:
		return ifdRef{group: metadata.GroupInterop, offset: e.offset}, true
	}
	return ifdRef{}, false
}

// valueBytes returns the raw value of e, inline or from its offset.
func valueBytes(block []byte, e ifdEntry) ([]byte, bool) {
	if e.typ == 0 || int(e.typ) >= len(typeSizes) {
		return nil, false
	}
	size := uint64(typeSizes[e.typ]) * uint64(e.count)
	if size == 0 {
		return nil, false
	}
	if size <= 4 {
		return e.inline[:size], true
	}
	if uint64(e.offset)+size > uint64(len(block)) {
		return nil, false
	}
	return block[e.offset : uint64(e.offset)+size], true
}

func renderEntry(block []byte, e ifdEntry, order binary.ByteOrder) (string, bool) {
	raw, ok := valueBytes(block, e)
	if !ok {
		return "", false
	}

	switch e.typ {
	case typeASCII:
		if i := strings.IndexByte(string(raw), 0); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimSpace(string(raw)), true
	case typeUndefined:
		return renderUndefined(raw), true
	}

	width := int(typeSizes[e.typ])
	parts := make([]string, 0, e.count)
	for i := 0; i+width <= len(raw); i += width {
		parts = append(parts, renderElement(raw[i:i+width], e.typ, order))
	}
	if len(parts) == 1 {
		return parts[0], true
	}
	return "[" + strings.Join(parts, ", ") + "]", true
}

func renderElement(b []byte, typ uint16, order binary.ByteOrder) string {
	switch typ {
	case typeByte:
		return strconv.Itoa(int(b[0]))
	case typeSByte:
		return strconv.Itoa(int(int8(b[0])))
	case typeShort:
		return strconv.Itoa(int(order.Uint16(b)))
	case typeSShort:
		return strconv.Itoa(int(int16(order.Uint16(b))))
	case typeLong:
		return strconv.FormatUint(uint64(order.Uint32(b)), 10)
	case typeSLong:
		return strconv.Itoa(int(int32(order.Uint32(b))))
	case typeRational:
		return ratio(int64(order.Uint32(b[0:4])), int64(order.Uint32(b[4:8])))
	case typeSRational:
		return ratio(int64(int32(order.Uint32(b[0:4]))), int64(int32(order.Uint32(b[4:8]))))
	case typeFloat:
		return strconv.FormatFloat(float64(math.Float32frombits(order.Uint32(b))), 'f', -1, 32)
	case typeDouble:
		return metadata.FormatFloat(math.Float64frombits(order.Uint64(b)))
	}
	return ""
}

// ratio renders num/den in lowest terms, or as an integer when den is 1.
func ratio(num, den int64) string {
	if den == 0 {
		return strconv.FormatInt(num, 10) + "/0"
	}
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs(num), den); g > 1 {
		num, den = num/g, den/g
	}
	if den == 1 {
		return strconv.FormatInt(num, 10)
	}
	return strconv.FormatInt(num, 10) + "/" + strconv.FormatInt(den, 10)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// renderUndefined keeps printable text and lists other bytes.
func renderUndefined(raw []byte) string {
	s := strings.TrimRight(string(raw), "\x00")
	if utf8.ValidString(s) && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsPrint(r) }) < 0 {
		return strings.TrimSpace(s)
	}
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = strconv.Itoa(int(b))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
