// Package stealth implements the bit-level codec for prompt text hidden
// in the low-order bits of RGBA channel bytes.
//
// Wire form, scanned in raster order over channel bytes: a 15-byte magic
// header, a 32-bit big-endian payload bit length, then the UTF-8 payload.
// Each channel byte's least-significant bit carries one payload bit; all
// higher bits are untouched.
package stealth

import (
	"unicode/utf8"

	"github.com/simonhull/promptmeta/internal/types"
)

// Magic is the fixed 15-byte header identifying an embedded payload.
const Magic = "stealth_pnginfo"

const lengthBits = 32

// Decode scans the channel bytes for an embedded payload.
//
// Returns ok=false when the magic header does not match bit-for-bit,
// when the declared length exceeds the remaining channel capacity, or
// when the extracted bytes are not valid UTF-8. Corrupted input never
// panics; every read is bounded by len(pix).
func Decode(pix []byte) (string, bool) {
	headerBits := len(Magic) * 8
	if len(pix) < headerBits+lengthBits {
		return "", false
	}

	header := readBits(pix, 0, headerBits)
	if string(header) != Magic {
		return "", false
	}

	lenBytes := readBits(pix, headerBits, lengthBits)
	payloadBits := int(uint32(lenBytes[0])<<24 | uint32(lenBytes[1])<<16 | uint32(lenBytes[2])<<8 | uint32(lenBytes[3]))
	if payloadBits < 0 || payloadBits%8 != 0 {
		return "", false
	}
	// Bound the allocation by the declared channel capacity: a corrupted
	// length field must not drive an unbounded or out-of-range read.
	if payloadBits > len(pix)-headerBits-lengthBits {
		return "", false
	}

	payload := readBits(pix, headerBits+lengthBits, payloadBits)
	if !utf8.Valid(payload) {
		return "", false
	}
	return string(payload), true
}

// Encode embeds payload into the channel bytes in place.
//
// Capacity is validated before any bit is touched; on CapacityError the
// buffer is unchanged.
func Encode(pix []byte, payload string) error {
	headerBits := len(Magic) * 8
	payloadBits := len(payload) * 8
	needed := headerBits + lengthBits + payloadBits
	if needed > len(pix) {
		return &types.CapacityError{NeededBits: needed, AvailableBits: len(pix)}
	}

	writeBits(pix, 0, []byte(Magic))
	length := [4]byte{
		byte(payloadBits >> 24),
		byte(payloadBits >> 16),
		byte(payloadBits >> 8),
		byte(payloadBits),
	}
	writeBits(pix, headerBits, length[:])
	writeBits(pix, headerBits+lengthBits, []byte(payload))
	return nil
}

// readBits collects n bits starting at bit offset off, MSB-first per
// output byte. n must be a multiple of 8 and off+n <= len(pix).
func readBits(pix []byte, off, n int) []byte {
	out := make([]byte, n/8)
	for i := 0; i < n; i++ {
		bit := pix[off+i] & 1
		out[i/8] |= bit << (7 - uint(i%8))
	}
	return out
}

// writeBits stores each bit of data into the LSB of successive channel
// bytes starting at bit offset off.
func writeBits(pix []byte, off int, data []byte) {
	for i := 0; i < len(data)*8; i++ {
		bit := data[i/8] >> (7 - uint(i%8)) & 1
		pix[off+i] = pix[off+i]&^1 | bit
	}
}
