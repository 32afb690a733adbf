package formatters

import "github.com/digimosa/exif-inspector/internal/metadata"

// Kind tells the two formatter variants apart.
type Kind int

const (
	KindFunc Kind = iota
	KindTable
)

// Formatter is either a plain function or a lookup table.
type Formatter struct {
	Name  string
	Kind  Kind
	fn    func(any) string
	table EnumTable
}

// Func wraps fn as a function formatter.
func Func(name string, fn func(any) string) Formatter {
	return Formatter{Name: name, Kind: KindFunc, fn: fn}
}

// Table wraps table as a lookup formatter.
func Table(name string, table EnumTable) Formatter {
	return Formatter{Name: name, Kind: KindTable, table: table}
}

// Format applies the formatter to v.
func (f Formatter) Format(v any) string {
	switch f.Kind {
	case KindTable:
		return Enum(v, f.table)
	default:
		return f.fn(v)
	}
}

var (
	FlashModes = EnumTable{
		0:  "未闪光",
		1:  "闪光",
		5:  "闪光，未检测到回闪",
		7:  "闪光，检测到回闪",
		9:  "强制闪光",
		13: "强制闪光，未检测到回闪",
		15: "强制闪光，检测到回闪",
		16: "未闪光，强制关闭",
		24: "未闪光，自动模式",
		25: "闪光，自动模式",
		29: "闪光，自动模式，未检测到回闪",
		31: "闪光，自动模式，检测到回闪",
	}

	WhiteBalanceModes = EnumTable{
		0: "自动",
		1: "手动",
	}

	ExposureModes = EnumTable{
		0: "自动曝光",
		1: "手动曝光",
		2: "自动包围曝光",
	}

	MeteringModes = EnumTable{
		0: "未知",
		1: "平均测光",
		2: "中央重点测光",
		3: "点测光",
		4: "多点测光",
		5: "评价测光",
		6: "局部测光",
	}

	Orientations = EnumTable{
		1: "正常",
		2: "水平翻转",
		3: "旋转180度",
		4: "垂直翻转",
		5: "水平翻转+逆时针旋转90度",
		6: "顺时针旋转90度",
		7: "水平翻转+顺时针旋转90度",
		8: "逆时针旋转90度",
	}
)

// registry is built once and never written afterwards.
var registry = map[string]Formatter{
	"ExposureTime": Func("exposure-time", ExposureTime),
	"FNumber":      Func("f-number", FNumber),
	"FocalLength":  Func("focal-length", FocalLength),
	"Flash":        Table("flash", FlashModes),
	"WhiteBalance": Table("white-balance", WhiteBalanceModes),
	"ExposureMode": Table("exposure-mode", ExposureModes),
	"MeteringMode": Table("metering-mode", MeteringModes),
	"Orientation":  Table("orientation", Orientations),
}

// For returns the formatter registered for a canonical field name.
func For(field string) (Formatter, bool) {
	f, ok := registry[field]
	return f, ok
}

// Apply formats v with the field's formatter, or stringifies it when the
// field has none.
func Apply(field string, v any) string {
	if f, ok := For(field); ok {
		return f.Format(v)
	}
	return metadata.Stringify(v)
}
