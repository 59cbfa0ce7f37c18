// Package exif parses and builds the minimal slice of TIFF/EXIF needed
// for prompt metadata: the IFD0 tag table, the Exif sub-IFD, and the
// UserComment field with its charset prefix.
package exif

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Tags that carry prompt metadata in the wild.
const (
	// TagModel (IFD0) is abused by some tools to hold a JSON parameter blob.
	TagModel uint16 = 0x0110
	// TagExifIFD points at the Exif sub-IFD.
	TagExifIFD uint16 = 0x8769
	// TagUserComment holds prompt text with an 8-byte charset prefix.
	TagUserComment uint16 = 0x9286
)

// TIFF field types.
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeUndefined = 7
)

var typeSizes = map[uint16]int{
	typeByte:      1,
	typeASCII:     1,
	typeShort:     2,
	typeLong:      4,
	typeRational:  8,
	typeUndefined: 1,
}

// Value is one decoded tag value: the raw bytes plus the TIFF field type
// and byte order needed to interpret them.
type Value struct {
	Type  uint16
	Data  []byte
	Order binary.ByteOrder
}

// Text interprets the value as a string.
//
// ASCII values are NUL-trimmed. UNDEFINED values are decoded per the
// UserComment convention: an 8-byte charset prefix ("ASCII\x00\x00\x00" or
// "UNICODE\x00") followed by the text. UNICODE text is UTF-16; a BOM is
// honored when present, big-endian assumed otherwise.
func (v Value) Text() string {
	switch v.Type {
	case typeASCII:
		return strings.TrimRight(string(v.Data), "\x00")
	case typeUndefined:
		if len(v.Data) >= 8 {
			switch string(v.Data[:8]) {
			case "ASCII\x00\x00\x00":
				return strings.TrimRight(string(v.Data[8:]), "\x00")
			case "UNICODE\x00":
				dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
				s, err := dec.Bytes(v.Data[8:])
				if err != nil {
					return ""
				}
				return strings.TrimRight(string(s), "\x00")
			}
		}
		return strings.TrimRight(string(v.Data), "\x00")
	default:
		return string(v.Data)
	}
}

// Uint interprets a SHORT or LONG value as an integer (first component).
func (v Value) Uint() (uint32, bool) {
	switch v.Type {
	case typeShort:
		if len(v.Data) >= 2 {
			return uint32(v.Order.Uint16(v.Data)), true
		}
	case typeLong:
		if len(v.Data) >= 4 {
			return v.Order.Uint32(v.Data), true
		}
	}
	return 0, false
}

// Parse decodes a TIFF block (the bytes following the "Exif\x00\x00"
// header in JPEG APP1, or a WEBP EXIF chunk) into a tag table. IFD0 and
// the Exif sub-IFD are merged into one map; sub-IFD tags do not collide
// with IFD0 tags in practice.
func Parse(data []byte) (map[uint16]Value, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("exif: block too short (%d bytes)", len(data))
	}

	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("exif: invalid TIFF byte order %q", data[:2])
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("exif: missing TIFF magic")
	}

	tags := make(map[uint16]Value)
	seen := make(map[uint32]bool)
	if err := parseIFD(data, order.Uint32(data[4:8]), order, tags, seen, 0); err != nil {
		return nil, err
	}
	return tags, nil
}

// maxIFDDepth bounds sub-IFD chasing on corrupted tables.
const maxIFDDepth = 4

func parseIFD(data []byte, offset uint32, order binary.ByteOrder, tags map[uint16]Value, seen map[uint32]bool, depth int) error {
	if depth > maxIFDDepth || seen[offset] {
		return nil
	}
	seen[offset] = true

	if int64(offset)+2 > int64(len(data)) {
		return fmt.Errorf("exif: IFD offset %d out of bounds", offset)
	}
	count := int(order.Uint16(data[offset : offset+2]))
	entry := int64(offset) + 2

	for i := 0; i < count; i++ {
		if entry+12 > int64(len(data)) {
			break
		}
		tag := order.Uint16(data[entry : entry+2])
		ftype := order.Uint16(data[entry+2 : entry+4])
		n := order.Uint32(data[entry+4 : entry+8])
		entry += 12

		size, ok := typeSizes[ftype]
		if !ok {
			continue
		}
		total := int64(size) * int64(n)
		if total < 0 || total > int64(len(data)) {
			continue
		}

		var raw []byte
		if total <= 4 {
			raw = data[entry-4 : entry-4+total]
		} else {
			valOff := int64(order.Uint32(data[entry-4 : entry]))
			if valOff+total > int64(len(data)) {
				continue
			}
			raw = data[valOff : valOff+total]
		}

		if tag == TagExifIFD && ftype == typeLong && n >= 1 {
			sub := order.Uint32(raw)
			if err := parseIFD(data, sub, order, tags, seen, depth+1); err == nil {
				continue
			}
			continue
		}

		tags[tag] = Value{Type: ftype, Data: raw, Order: order}
	}
	return nil
}

// Build produces a minimal little-endian TIFF block containing an Exif
// sub-IFD with UserComment set to text. ASCII text uses the ASCII
// charset prefix; anything else is encoded as UTF-16BE under the
// UNICODE prefix.
//
// The result is suitable for a JPEG APP1 segment (after the
// "Exif\x00\x00" header) or a WEBP EXIF chunk.
func Build(userComment string) []byte {
	comment := encodeUserComment(userComment)

	// Layout: header(8) | IFD0: count + 1 entry + next(4) | Exif IFD:
	// count + 1 entry + next(4) | comment bytes.
	const ifd0Off = 8
	ifd0Size := 2 + 12 + 4
	exifOff := ifd0Off + ifd0Size
	exifSize := 2 + 12 + 4
	commentOff := exifOff + exifSize

	buf := make([]byte, commentOff+len(comment))
	le := binary.LittleEndian

	copy(buf[0:], "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], ifd0Off)

	// IFD0: single ExifIFD pointer entry.
	le.PutUint16(buf[ifd0Off:], 1)
	putEntry(buf[ifd0Off+2:], TagExifIFD, typeLong, 1, uint32(exifOff))

	// Exif IFD: single UserComment entry. The 8-byte charset prefix
	// guarantees the value never fits inline, so it always lives at an
	// offset.
	le.PutUint16(buf[exifOff:], 1)
	putEntry(buf[exifOff+2:], TagUserComment, typeUndefined, uint32(len(comment)), uint32(commentOff))
	copy(buf[commentOff:], comment)

	return buf
}

func putEntry(buf []byte, tag, ftype uint16, count, value uint32) {
	le := binary.LittleEndian
	le.PutUint16(buf[0:], tag)
	le.PutUint16(buf[2:], ftype)
	le.PutUint32(buf[4:], count)
	le.PutUint32(buf[8:], value)
}

func encodeUserComment(text string) []byte {
	ascii := true
	for i := 0; i < len(text); i++ {
		if text[i] > 0x7F {
			ascii = false
			break
		}
	}
	if ascii {
		return append([]byte("ASCII\x00\x00\x00"), text...)
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	encoded, err := enc.Bytes([]byte(text))
	if err != nil {
		// Fall back to raw UTF-8 under the ASCII prefix; readers treat
		// unknown bytes as opaque text.
		return append([]byte("ASCII\x00\x00\x00"), text...)
	}
	return append([]byte("UNICODE\x00"), encoded...)
}
