package integrity

import "regexp"

// EditingSoftwareSignatures are tool names that only appear in a Software
// tag after an image went through an editor.
var EditingSoftwareSignatures = []string{
	"Adobe Photoshop",
	"GIMP",
	"Paint.NET",
	"Canva",
	"Snapseed",
	"VSCO",
	"Lightroom",
	"Photoshop Express",
	"PicsArt",
	"Fotor",
}

// SuspiciousSoftwarePatterns match generic editor signatures.
var SuspiciousSoftwarePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Adobe Photoshop.*`),
	regexp.MustCompile(`(?i)GIMP.*`),
	regexp.MustCompile(`(?i).*Editor.*`),
	regexp.MustCompile(`(?i).*Photo.*Editor.*`),
}

// Manufacturer associates a lowercase make key with substrings expected in
// that maker's model names.
type Manufacturer struct {
	Key    string
	Models []string
}

// Manufacturers is matched in order; the first key contained in the make wins.
var Manufacturers = []Manufacturer{
	{"canon", []string{"canon", "eos", "powershot", "rebel"}},
	{"nikon", []string{"nikon", "d", "coolpix", "z"}},
	{"sony", []string{"sony", "alpha", "a7", "rx", "fx"}},
	{"apple", []string{"iphone", "ipad"}},
	{"samsung", []string{"samsung", "galaxy", "sm-"}},
	{"huawei", []string{"huawei", "mate", "p", "nova", "honor"}},
	{"xiaomi", []string{"xiaomi", "mi", "redmi", "poco"}},
	{"fujifilm", []string{"fujifilm", "x-", "gfx"}},
	{"olympus", []string{"olympus", "om-", "e-m", "pen"}},
	{"panasonic", []string{"panasonic", "lumix", "gh", "gx"}},
	{"leica", []string{"leica", "q", "m", "s"}},
	{"pentax", []string{"pentax", "k-", "ricoh"}},
}

// SoftwareFields are the tags inspected for editor signatures.
var SoftwareFields = []string{"Software", "ProcessingSoftware", "HostComputer"}

// TimestampFields are compared pairwise.
var TimestampFields = []string{"DateTime", "DateTimeOriginal", "DateTimeDigitized"}

// CriticalFields must be present in an unedited camera image.
var CriticalFields = []string{"Make", "Model", "DateTime"}

const (
	// ExifTimeLayout is the EXIF "YYYY:MM:DD HH:MM:SS" format.
	ExifTimeLayout = "2006:01:02 15:04:05"

	// MaxTimestampDrift is the largest gap, in seconds, tolerated between
	// two capture timestamps.
	MaxTimestampDrift = 3600.0

	MinISO         = 25
	MaxISO         = 102400
	MinFocalLength = 1.0
	MaxFocalLength = 1000.0
)
