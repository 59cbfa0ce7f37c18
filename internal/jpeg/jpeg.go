// Package jpeg walks JPEG marker segments: SOF geometry, the COM comment
// segment, and the APP1 EXIF payload, plus segment-level rewriting for
// EXIF write-back.
package jpeg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	pbinary "github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/types"
)

const exifHeader = "Exif\x00\x00"

// Info holds the structural metadata extracted from a JPEG stream.
type Info struct {
	Width      int
	Height     int
	Components int
	Comment    string
	Exif       []byte // raw TIFF block, nil when absent
	Warnings   []types.Warning
}

// ColorMode maps the SOF component count onto a color mode name.
func (i *Info) ColorMode() string {
	switch i.Components {
	case 1:
		return "L"
	case 3:
		return "RGB"
	case 4:
		return "CMYK"
	default:
		return "unknown"
	}
}

// Decode walks marker segments up to SOS and collects geometry, comment,
// and EXIF bytes.
func Decode(data []byte, path string) (*Info, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, &types.CorruptedFileError{Path: path, Reason: "missing SOI marker"}
	}

	sr := pbinary.NewSafeReader(data, path)
	info := &Info{}
	offset := int64(2)

	for offset+4 <= sr.Size() {
		if data[offset] != 0xFF {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "invalid segment marker"}
		}
		marker := data[offset+1]

		// Standalone markers carry no length.
		if marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			offset += 2
			continue
		}
		if marker == 0xD9 { // EOI
			break
		}

		length, err := pbinary.Read[uint16](sr, offset+2, "segment length")
		if err != nil || length < 2 {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated segment"}
		}
		body, err := sr.Bytes(offset+4, int(length)-2, "segment data")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated segment"}
		}

		switch {
		case marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC:
			// SOF segment: precision(1), height(2), width(2), components(1).
			if len(body) >= 6 {
				info.Height = int(binary.BigEndian.Uint16(body[1:3]))
				info.Width = int(binary.BigEndian.Uint16(body[3:5]))
				info.Components = int(body[5])
			}
		case marker == 0xFE: // COM
			info.Comment = string(body)
		case marker == 0xE1: // APP1
			if len(body) >= len(exifHeader) && string(body[:len(exifHeader)]) == exifHeader && info.Exif == nil {
				info.Exif = body[len(exifHeader):]
			}
		}

		offset += 4 + int64(length) - 2
		if marker == 0xDA { // SOS: entropy-coded data follows
			break
		}
	}

	return info, nil
}

// SetExif rebuilds the JPEG stream with a single APP1 EXIF segment
// holding tiff, inserted directly after SOI (after JFIF APP0 when
// present). Existing EXIF APP1 and COM segments are dropped so stale
// prompt metadata cannot shadow the new payload. Entropy-coded data is
// copied through untouched.
func SetExif(data []byte, path string, tiff []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, &types.CorruptedFileError{Path: path, Reason: "missing SOI marker"}
	}
	if len(tiff)+len(exifHeader)+2 > 0xFFFF {
		return nil, &types.WriteError{Path: path, Reason: fmt.Sprintf("EXIF payload of %d bytes exceeds segment capacity", len(tiff))}
	}

	var out bytes.Buffer
	out.Write(data[:2])

	offset := int64(2)
	inserted := false

	insert := func() {
		body := append([]byte(exifHeader), tiff...)
		out.Write([]byte{0xFF, 0xE1})
		var l [2]byte
		binary.BigEndian.PutUint16(l[:], uint16(len(body)+2))
		out.Write(l[:])
		out.Write(body)
		inserted = true
	}

	for offset+4 <= int64(len(data)) {
		if data[offset] != 0xFF {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "invalid segment marker"}
		}
		marker := data[offset+1]

		if marker == 0xD9 || marker == 0xDA || (marker >= 0xD0 && marker <= 0xD7) || marker == 0x01 {
			// Reached entropy data or a standalone marker; copy the rest verbatim.
			break
		}

		length := int64(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
		if length < 2 || offset+2+length > int64(len(data)) {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated segment"}
		}
		segment := data[offset : offset+2+length]
		body := segment[4:]

		isExif := marker == 0xE1 && len(body) >= len(exifHeader) && string(body[:len(exifHeader)]) == exifHeader
		isComment := marker == 0xFE

		if marker == 0xE0 && !inserted {
			// Keep JFIF APP0 first, then the new EXIF segment.
			out.Write(segment)
			insert()
		} else if !isExif && !isComment {
			if !inserted {
				insert()
			}
			out.Write(segment)
		}

		offset += 2 + length
	}

	if !inserted {
		insert()
	}
	out.Write(data[offset:])
	return out.Bytes(), nil
}

// Strip rebuilds the JPEG stream without EXIF APP1 and COM segments.
func Strip(data []byte, path string) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, &types.CorruptedFileError{Path: path, Reason: "missing SOI marker"}
	}

	var out bytes.Buffer
	out.Write(data[:2])

	offset := int64(2)
	for offset+4 <= int64(len(data)) {
		if data[offset] != 0xFF {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "invalid segment marker"}
		}
		marker := data[offset+1]
		if marker == 0xD9 || marker == 0xDA || (marker >= 0xD0 && marker <= 0xD7) || marker == 0x01 {
			break
		}

		length := int64(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
		if length < 2 || offset+2+length > int64(len(data)) {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated segment"}
		}
		segment := data[offset : offset+2+length]
		body := segment[4:]

		isExif := marker == 0xE1 && len(body) >= len(exifHeader) && string(body[:len(exifHeader)]) == exifHeader
		if !isExif && marker != 0xFE {
			out.Write(segment)
		}
		offset += 2 + length
	}

	out.Write(data[offset:])
	return out.Bytes(), nil
}
