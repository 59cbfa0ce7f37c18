// Package png walks PNG chunk streams: it extracts IHDR geometry and the
// three text chunk flavors (tEXt, zTXt, iTXt), and rebuilds the stream
// with replaced text chunks for write-back.
//
// Only chunk structure is handled here; pixel decoding is delegated to
// the standard image library by the container adapter.
package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"

	pbinary "github.com/simonhull/promptmeta/internal/binary"
	"github.com/simonhull/promptmeta/internal/types"
)

// Signature is the 8-byte PNG file signature.
const Signature = "\x89PNG\r\n\x1a\n"

// TextChunk is one decoded text chunk, in stream order.
type TextChunk struct {
	Key   string
	Value string
}

// Info holds the structural metadata extracted from a PNG stream.
type Info struct {
	Width     int
	Height    int
	ColorType byte
	Texts     []TextChunk
	Warnings  []types.Warning
}

// ColorMode maps the IHDR color type onto a color mode name.
func (i *Info) ColorMode() string {
	switch i.ColorType {
	case 0:
		return "L"
	case 2:
		return "RGB"
	case 3:
		return "P"
	case 4:
		return "LA"
	case 6:
		return "RGBA"
	default:
		return "unknown"
	}
}

// maxTextChunk bounds decompressed text size so a malicious zTXt stream
// cannot allocate without limit.
const maxTextChunk = 16 << 20

// Decode walks the chunk stream and collects IHDR geometry and text
// chunks. Chunks with bad CRCs are skipped with a warning rather than
// failing the whole container.
func Decode(data []byte, path string) (*Info, error) {
	if len(data) < len(Signature) || string(data[:len(Signature)]) != Signature {
		return nil, &types.CorruptedFileError{Path: path, Reason: "invalid PNG signature"}
	}

	sr := pbinary.NewSafeReader(data, path)
	info := &Info{}
	offset := int64(len(Signature))
	sawIHDR := false

	for offset < sr.Size() {
		length, err := pbinary.Read[uint32](sr, offset, "chunk length")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated chunk header"}
		}
		typeBytes, err := sr.Bytes(offset+4, 4, "chunk type")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated chunk header"}
		}
		ctype := string(typeBytes)

		body, err := sr.Bytes(offset+8, int(length), "chunk data")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: fmt.Sprintf("truncated %s chunk", ctype)}
		}
		crcWant, err := pbinary.Read[uint32](sr, offset+8+int64(length), "chunk CRC")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: fmt.Sprintf("missing CRC for %s chunk", ctype)}
		}

		crcGot := crc32.ChecksumIEEE(append(append([]byte{}, typeBytes...), body...))
		if crcGot != crcWant {
			info.Warnings = append(info.Warnings, types.Warning{
				Stage:   "chunk",
				Message: fmt.Sprintf("bad CRC on %s chunk, skipping", ctype),
				Offset:  offset,
			})
			offset += 12 + int64(length)
			continue
		}

		switch ctype {
		case "IHDR":
			if len(body) >= 13 {
				info.Width = int(binary.BigEndian.Uint32(body[0:4]))
				info.Height = int(binary.BigEndian.Uint32(body[4:8]))
				info.ColorType = body[9]
				sawIHDR = true
			}
		case "tEXt":
			if key, val, ok := splitKeyValue(body); ok {
				info.Texts = append(info.Texts, TextChunk{Key: key, Value: val})
			}
		case "zTXt":
			if tc, err := decodeZTXT(body); err == nil {
				info.Texts = append(info.Texts, tc)
			} else {
				info.Warnings = append(info.Warnings, types.Warning{
					Stage:   "chunk",
					Message: fmt.Sprintf("undecodable zTXt chunk: %v", err),
					Offset:  offset,
				})
			}
		case "iTXt":
			if tc, err := decodeITXT(body); err == nil {
				info.Texts = append(info.Texts, tc)
			} else {
				info.Warnings = append(info.Warnings, types.Warning{
					Stage:   "chunk",
					Message: fmt.Sprintf("undecodable iTXt chunk: %v", err),
					Offset:  offset,
				})
			}
		case "IEND":
			if !sawIHDR {
				return nil, &types.CorruptedFileError{Path: path, Reason: "missing IHDR chunk"}
			}
			return info, nil
		}

		offset += 12 + int64(length)
	}

	if !sawIHDR {
		return nil, &types.CorruptedFileError{Path: path, Reason: "missing IHDR chunk"}
	}
	// Tolerate a missing IEND; everything useful was already read.
	info.Warnings = append(info.Warnings, types.Warning{Stage: "container", Message: "missing IEND chunk"})
	return info, nil
}

func splitKeyValue(body []byte) (string, string, bool) {
	i := bytes.IndexByte(body, 0)
	if i < 0 {
		return "", "", false
	}
	return string(body[:i]), string(body[i+1:]), true
}

func decodeZTXT(body []byte) (TextChunk, error) {
	i := bytes.IndexByte(body, 0)
	if i < 0 || i+2 > len(body) {
		return TextChunk{}, fmt.Errorf("malformed zTXt header")
	}
	if body[i+1] != 0 {
		return TextChunk{}, fmt.Errorf("unknown zTXt compression method %d", body[i+1])
	}
	text, err := inflate(body[i+2:])
	if err != nil {
		return TextChunk{}, err
	}
	return TextChunk{Key: string(body[:i]), Value: string(text)}, nil
}

func decodeITXT(body []byte) (TextChunk, error) {
	i := bytes.IndexByte(body, 0)
	if i < 0 || i+3 > len(body) {
		return TextChunk{}, fmt.Errorf("malformed iTXt header")
	}
	key := string(body[:i])
	compressed := body[i+1] == 1
	rest := body[i+3:]

	// Skip language tag and translated keyword.
	for n := 0; n < 2; n++ {
		j := bytes.IndexByte(rest, 0)
		if j < 0 {
			return TextChunk{}, fmt.Errorf("malformed iTXt header")
		}
		rest = rest[j+1:]
	}

	if !compressed {
		return TextChunk{Key: key, Value: string(rest)}, nil
	}
	text, err := inflate(rest)
	if err != nil {
		return TextChunk{}, err
	}
	return TextChunk{Key: key, Value: string(text)}, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxTextChunk))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetTexts rebuilds the PNG stream with the given text chunks replaced.
//
// Existing tEXt/zTXt/iTXt chunks whose key appears in set or remove are
// dropped; the set chunks are inserted as tEXt immediately after IHDR.
// All other chunks, pixel data included, are copied through untouched.
func SetTexts(data []byte, path string, set []TextChunk, remove []string) ([]byte, error) {
	if len(data) < len(Signature) || string(data[:len(Signature)]) != Signature {
		return nil, &types.CorruptedFileError{Path: path, Reason: "invalid PNG signature"}
	}

	drop := make(map[string]bool, len(set)+len(remove))
	for _, tc := range set {
		drop[tc.Key] = true
	}
	for _, key := range remove {
		drop[key] = true
	}

	sr := pbinary.NewSafeReader(data, path)
	var out bytes.Buffer
	out.WriteString(Signature)

	offset := int64(len(Signature))
	inserted := false

	for offset < sr.Size() {
		length, err := pbinary.Read[uint32](sr, offset, "chunk length")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated chunk header"}
		}
		raw, err := sr.Bytes(offset, 12+int(length), "chunk")
		if err != nil {
			return nil, &types.CorruptedFileError{Path: path, Offset: offset, Reason: "truncated chunk"}
		}
		ctype := string(raw[4:8])
		body := raw[8 : 8+length]

		skip := false
		if ctype == "tEXt" || ctype == "zTXt" || ctype == "iTXt" {
			if key, _, ok := splitKeyValue(body); ok && drop[key] {
				skip = true
			}
		}
		if !skip {
			out.Write(raw)
		}

		if ctype == "IHDR" && !inserted {
			for _, tc := range set {
				writeChunk(&out, "tEXt", append(append([]byte(tc.Key), 0), tc.Value...))
			}
			inserted = true
		}

		offset += 12 + int64(length)
		if ctype == "IEND" {
			break
		}
	}

	if !inserted {
		return nil, &types.CorruptedFileError{Path: path, Reason: "missing IHDR chunk"}
	}
	return out.Bytes(), nil
}

func writeChunk(out *bytes.Buffer, ctype string, body []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(body)))
	copy(header[4:8], ctype)
	out.Write(header[:])
	out.Write(body)

	crc := crc32.NewIEEE()
	crc.Write([]byte(ctype))
	crc.Write(body)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())
	out.Write(tail[:])
}
