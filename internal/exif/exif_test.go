package exif

import (
	"encoding/binary"
	"testing"
)

func TestBuildParseRoundTripASCII(t *testing.T) {
	comment := "a cat\nNegative prompt: dog\nSteps: 20, Seed: 42"
	block := Build(comment)

	tags, err := Parse(block)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	value, ok := tags[TagUserComment]
	if !ok {
		t.Fatal("UserComment tag missing from parsed block")
	}
	if got := value.Text(); got != comment {
		t.Errorf("Text() = %q, want %q", got, comment)
	}
}

func TestBuildParseRoundTripUnicode(t *testing.T) {
	comment := "桜の下の猫, 高品質"
	block := Build(comment)

	tags, err := Parse(block)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := tags[TagUserComment].Text(); got != comment {
		t.Errorf("Text() = %q, want %q", got, comment)
	}
}

func TestBuildUsesCharsetPrefixes(t *testing.T) {
	ascii := Build("plain")
	if got := string(ascii[len(ascii)-13 : len(ascii)-5]); got != "ASCII\x00\x00\x00" {
		t.Errorf("ascii prefix = %q, want ASCII prefix", got)
	}

	tags, err := Parse(Build("héllo"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	raw := tags[TagUserComment].Data
	if len(raw) < 8 || string(raw[:8]) != "UNICODE\x00" {
		t.Errorf("non-ascii prefix = %q, want UNICODE prefix", raw[:min(8, len(raw))])
	}
}

func TestParseBigEndianASCIIModel(t *testing.T) {
	// Hand-built big-endian TIFF with a single ASCII Model tag, value
	// inline-sized past 4 bytes so it lives at an offset.
	value := []byte("swarm\x00")
	block := make([]byte, 8+2+12+4+len(value))
	be := binary.BigEndian

	copy(block[0:], "MM")
	be.PutUint16(block[2:], 42)
	be.PutUint32(block[4:], 8)

	be.PutUint16(block[8:], 1)
	be.PutUint16(block[10:], TagModel)
	be.PutUint16(block[12:], typeASCII)
	be.PutUint32(block[14:], uint32(len(value)))
	be.PutUint32(block[18:], uint32(8+2+12+4))
	copy(block[8+2+12+4:], value)

	tags, err := Parse(block)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := tags[TagModel].Text(); got != "swarm" {
		t.Errorf("Model = %q, want %q", got, "swarm")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte("II")},
		{"bad byte order", []byte("XX\x2a\x00\x08\x00\x00\x00")},
		{"missing magic", []byte("II\x00\x00\x08\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestParseOutOfBoundsOffsetsSkipEntries(t *testing.T) {
	// IFD entry whose value offset points past the block: entry skipped,
	// no panic, no error.
	block := make([]byte, 8+2+12+4)
	le := binary.LittleEndian
	copy(block[0:], "II")
	le.PutUint16(block[2:], 42)
	le.PutUint32(block[4:], 8)
	le.PutUint16(block[8:], 1)
	le.PutUint16(block[10:], TagUserComment)
	le.PutUint16(block[12:], typeUndefined)
	le.PutUint32(block[14:], 100)
	le.PutUint32(block[18:], 0xFFFF)

	tags, err := Parse(block)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := tags[TagUserComment]; ok {
		t.Error("out-of-bounds entry should have been skipped")
	}
}

func TestParseSelfReferentialIFDTerminates(t *testing.T) {
	// ExifIFD pointer looping back to IFD0 must not recurse forever.
	block := make([]byte, 8+2+12+4)
	le := binary.LittleEndian
	copy(block[0:], "II")
	le.PutUint16(block[2:], 42)
	le.PutUint32(block[4:], 8)
	le.PutUint16(block[8:], 1)
	le.PutUint16(block[10:], TagExifIFD)
	le.PutUint16(block[12:], typeLong)
	le.PutUint32(block[14:], 1)
	le.PutUint32(block[18:], 8)

	if _, err := Parse(block); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
}

func TestUserCommentTextFallsBackWithoutPrefix(t *testing.T) {
	v := Value{Type: typeUndefined, Data: []byte("raw text\x00\x00"), Order: binary.LittleEndian}
	if got := v.Text(); got != "raw text" {
		t.Errorf("Text() = %q, want trimmed raw text", got)
	}
}
