package extractor

import (
	"bytes"
	"encoding/binary"
)

var exifHeader = []byte("Exif\x00\x00")

// LocateTIFF returns the TIFF structure holding the EXIF directories of an
// image, or nil when the container carries none. Truncated segments end the
// search without error.
func LocateTIFF(data []byte, format Format) []byte {
	switch format {
	case FormatJPEG:
		return jpegAPP1(data)
	case FormatPNG:
		return pngEXIf(data)
	case FormatWEBP:
		return webpEXIF(data)
	case FormatTIFF:
		return data
	}
	return nil
}

// jpegAPP1 walks the marker segments up to start of scan.
func jpegAPP1(data []byte) []byte {
	offset := 2 // SOI
	for offset+4 <= len(data) {
		if data[offset] != 0xFF {
			offset++
			continue
		}
		marker := data[offset+1]
		offset += 2

		// Fill bytes and standalone markers carry no length.
		if marker == 0xFF || marker == 0x00 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD8) {
			if marker == 0xFF {
				offset--
			}
			continue
		}
		if marker == 0xDA || marker == 0xD9 {
			return nil
		}

		segLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
		if segLen < 2 || offset+segLen > len(data) {
			return nil
		}
		seg := data[offset+2 : offset+segLen]
		if marker == 0xE1 && bytes.HasPrefix(seg, exifHeader) {
			return seg[len(exifHeader):]
		}
		offset += segLen
	}
	return nil
}

// pngEXIf walks the chunk list looking for eXIf.
func pngEXIf(data []byte) []byte {
	offset := len(magicPNG)
	for offset+8 <= len(data) {
		chunkLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		chunkType := string(data[offset+4 : offset+8])
		end := offset + 8 + chunkLen
		if chunkLen < 0 || end+4 > len(data) {
			return nil
		}
		switch chunkType {
		case "eXIf":
			return bytes.TrimPrefix(data[offset+8:end], exifHeader)
		case "IEND":
			return nil
		}
		offset = end + 4 // CRC
	}
	return nil
}

// webpEXIF walks the RIFF chunks of an extended WebP file.
func webpEXIF(data []byte) []byte {
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		end := offset + 8 + size
		if size < 0 || end > len(data) {
			return nil
		}
		if id == "EXIF" {
			return bytes.TrimPrefix(data[offset+8:end], exifHeader)
		}
		offset = end + size%2
	}
	return nil
}
