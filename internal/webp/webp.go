// Package webp walks RIFF chunk streams inside WEBP containers: VP8X
// features, bitstream geometry, and the EXIF chunk, plus chunk-level
// rewriting for EXIF write-back.
package webp

import (
	"bytes"
	"encoding/binary"

	pbinary "github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/types"
)

const exifHeader = "Exif\x00\x00"

// Info holds the structural metadata extracted from a WEBP stream.
type Info struct {
	Width    int
	Height   int
	HasAlpha bool
	Exif     []byte // raw TIFF block, nil when absent
	Warnings []types.Warning
}

// ColorMode reports RGBA when the container declares an alpha channel.
func (i *Info) ColorMode() string {
	if i.HasAlpha {
		return "RGBA"
	}
	return "RGB"
}

// VP8X feature flags.
const (
	flagICC   = 0x20
	flagAlpha = 0x10
	flagEXIF  = 0x08
	flagXMP   = 0x04
	flagAnim  = 0x02
)

// Decode walks the RIFF chunks and collects geometry, alpha, and EXIF.
func Decode(data []byte, path string) (*Info, error) {
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, &types.CorruptedFileError{Path: path, Reason: "invalid RIFF/WEBP header"}
	}

	sr := pbinary.NewSafeReader(data, path)
	info := &Info{}
	offset := int64(12)

	for offset+8 <= sr.Size() {
		fourcc, err := sr.Bytes(offset, 4, "chunk fourcc")
		if err != nil {
			break
		}
		size, err := pbinary.ReadLE[uint32](sr, offset+4, "chunk size")
		if err != nil {
			break
		}
		body, err := sr.Bytes(offset+8, int(size), "chunk data")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated " + string(fourcc) + " chunk"}
		}

		switch string(fourcc) {
		case "VP8X":
			if len(body) >= 10 {
				info.HasAlpha = info.HasAlpha || body[0]&flagAlpha != 0
				info.Width = 1 + int(uint32(body[4])|uint32(body[5])<<8|uint32(body[6])<<16)
				info.Height = 1 + int(uint32(body[7])|uint32(body[8])<<8|uint32(body[9])<<16)
			}
		case "VP8 ":
			// Lossy bitstream: 3-byte frame tag, 3-byte start code, then
			// 14-bit width and height.
			if info.Width == 0 && len(body) >= 10 && body[3] == 0x9D && body[4] == 0x01 && body[5] == 0x2A {
				info.Width = int(binary.LittleEndian.Uint16(body[6:8]) & 0x3FFF)
				info.Height = int(binary.LittleEndian.Uint16(body[8:10]) & 0x3FFF)
			}
		case "VP8L":
			// Lossless bitstream: signature byte, then packed 14-bit
			// width-1, 14-bit height-1, alpha hint bit.
			if len(body) >= 5 && body[0] == 0x2F {
				bits := binary.LittleEndian.Uint32(body[1:5])
				if info.Width == 0 {
					info.Width = 1 + int(bits&0x3FFF)
					info.Height = 1 + int((bits>>14)&0x3FFF)
				}
				info.HasAlpha = info.HasAlpha || bits>>28&1 == 1
			}
		case "ALPH":
			info.HasAlpha = true
		case "EXIF":
			tiff := body
			if len(tiff) >= len(exifHeader) && string(tiff[:len(exifHeader)]) == exifHeader {
				// Some writers include the JPEG-style header; strip it.
				tiff = tiff[len(exifHeader):]
			}
			info.Exif = tiff
		}

		offset += 8 + int64(size)
		if size%2 == 1 {
			offset++ // chunks are padded to even size
		}
	}

	return info, nil
}

// SetExif rebuilds the WEBP stream with the EXIF chunk replaced by tiff.
//
// The VP8X EXIF flag is set so readers look for the chunk; when the
// container has no VP8X, one is synthesized from the decoded geometry.
// Bitstream chunks are copied through untouched.
func SetExif(data []byte, path string, tiff []byte) ([]byte, error) {
	info, err := Decode(data, path)
	if err != nil {
		return nil, err
	}
	if info.Width == 0 || info.Height == 0 {
		return nil, &types.WriteError{Path: path, Reason: "cannot determine canvas size for VP8X"}
	}

	var chunks bytes.Buffer

	// VP8X first, flags merged from the existing container.
	flags := byte(flagEXIF)
	if info.HasAlpha {
		flags |= flagAlpha
	}
	offset := int64(12)
	for offset+8 <= int64(len(data)) {
		fourcc := string(data[offset : offset+4])
		size := int64(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		if offset+8+size > int64(len(data)) {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated " + fourcc + " chunk"}
		}
		body := data[offset+8 : offset+8+size]

		switch fourcc {
		case "VP8X":
			if len(body) >= 1 {
				flags |= body[0]&^flagEXIF | flagEXIF
			}
		case "EXIF":
			// Replaced below.
		default:
			writeChunk(&chunks, fourcc, body)
		}

		offset += 8 + size
		if size%2 == 1 {
			offset++
		}
	}
	vp8x := make([]byte, 10)
	vp8x[0] = flags
	putUint24(vp8x[4:], uint32(info.Width-1))
	putUint24(vp8x[7:], uint32(info.Height-1))

	var out bytes.Buffer
	out.WriteString("RIFF")
	out.Write([]byte{0, 0, 0, 0}) // patched below
	out.WriteString("WEBP")
	writeChunk(&out, "VP8X", vp8x)
	out.Write(chunks.Bytes())
	writeChunk(&out, "EXIF", tiff)

	result := out.Bytes()
	binary.LittleEndian.PutUint32(result[4:8], uint32(len(result)-8))
	return result, nil
}

// StripExif rebuilds the WEBP stream without the EXIF chunk. An existing
// VP8X keeps its other feature flags with the EXIF bit cleared.
func StripExif(data []byte, path string) ([]byte, error) {
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, &types.CorruptedFileError{Path: path, Reason: "invalid RIFF/WEBP header"}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	out.Write([]byte{0, 0, 0, 0}) // patched below
	out.WriteString("WEBP")

	offset := int64(12)
	for offset+8 <= int64(len(data)) {
		fourcc := string(data[offset : offset+4])
		size := int64(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		if offset+8+size > int64(len(data)) {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated " + fourcc + " chunk"}
		}
		body := data[offset+8 : offset+8+size]

		switch fourcc {
		case "EXIF":
			// Dropped.
		case "VP8X":
			cleared := append([]byte{}, body...)
			if len(cleared) >= 1 {
				cleared[0] &^= flagEXIF
			}
			writeChunk(&out, fourcc, cleared)
		default:
			writeChunk(&out, fourcc, body)
		}

		offset += 8 + size
		if size%2 == 1 {
			offset++
		}
	}

	result := out.Bytes()
	binary.LittleEndian.PutUint32(result[4:8], uint32(len(result)-8))
	return result, nil
}

func writeChunk(out *bytes.Buffer, fourcc string, body []byte) {
	out.WriteString(fourcc)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(body)))
	out.Write(size[:])
	out.Write(body)
	if len(body)%2 == 1 {
		out.WriteByte(0)
	}
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
