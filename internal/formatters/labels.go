package formatters

// Labels maps canonical field names to their display labels.
var Labels = map[string]string{
	"Make":      "制造商",
	"Model":     "型号",
	"Software":  "软件版本",
	"LensModel": "镜头型号",
	"LensMake":  "镜头制造商",

	"DateTime":         "拍摄时间",
	"DateTimeOriginal": "原始拍摄时间",
	"ExposureTime":     "曝光时间",
	"FNumber":          "光圈",
	"ISOSpeedRatings":  "ISO",
	"FocalLength":      "焦距",
	"Flash":            "闪光灯",
	"WhiteBalance":     "白平衡",
	"ExposureMode":     "曝光模式",
	"MeteringMode":     "测光模式",
	"SceneCaptureType": "场景模式",

	"ImageWidth":     "图像宽度",
	"ImageLength":    "图像高度",
	"Orientation":    "方向",
	"XResolution":    "水平分辨率",
	"YResolution":    "垂直分辨率",
	"ResolutionUnit": "分辨率单位",
	"ColorSpace":     "色彩空间",

	"GPSLatitude":  "GPS纬度",
	"GPSLongitude": "GPS经度",
	"GPSAltitude":  "GPS海拔",
	"GPSTimeStamp": "GPS时间",
}

// Labels for the image header entries added by the analyzer.
const (
	LabelImageSize  = "图片尺寸"
	LabelImageFmt   = "图片格式"
	LabelColourMode = "颜色模式"
)

// Label returns the display label for field, or field itself when unmapped.
func Label(field string) string {
	if l, ok := Labels[field]; ok {
		return l
	}
	return field
}
