package binary

import (
	"strings"
	"testing"
)

func TestBytesInBounds(t *testing.T) {
	sr := NewSafeReader([]byte{1, 2, 3, 4, 5}, "test.bin")

	got, err := sr.Bytes(1, 3, "middle")
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if len(got) != 3 || got[0] != 2 || got[2] != 4 {
		t.Errorf("Bytes() = %v, want [2 3 4]", got)
	}
}

func TestBytesOutOfBounds(t *testing.T) {
	sr := NewSafeReader([]byte{1, 2, 3}, "test.bin")

	tests := []struct {
		name string
		off  int64
		n    int
	}{
		{"negative offset", -1, 1},
		{"offset past end", 3, 1},
		{"length past end", 1, 5},
		{"negative length", 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sr.Bytes(tt.off, tt.n, "probe"); err == nil {
				t.Error("Bytes() error = nil, want bounds error")
			}
		})
	}
}

func TestErrorMentionsPathAndContext(t *testing.T) {
	sr := NewSafeReader([]byte{1}, "image.png")
	_, err := sr.Bytes(5, 1, "chunk header")
	if err == nil {
		t.Fatal("Bytes() error = nil, want bounds error")
	}
	if !strings.Contains(err.Error(), "image.png") || !strings.Contains(err.Error(), "chunk header") {
		t.Errorf("error %q should mention path and context", err)
	}
}

func TestReadBigEndian(t *testing.T) {
	sr := NewSafeReader([]byte{0x12, 0x34, 0x56, 0x78}, "test.bin")

	if v, err := Read[uint16](sr, 0, "u16"); err != nil || v != 0x1234 {
		t.Errorf("Read[uint16] = %#x, %v; want 0x1234", v, err)
	}
	if v, err := Read[uint32](sr, 0, "u32"); err != nil || v != 0x12345678 {
		t.Errorf("Read[uint32] = %#x, %v; want 0x12345678", v, err)
	}
	if _, err := Read[uint64](sr, 0, "u64"); err == nil {
		t.Error("Read[uint64] past end: error = nil, want bounds error")
	}
}

func TestReadLittleEndian(t *testing.T) {
	sr := NewSafeReader([]byte{0x78, 0x56, 0x34, 0x12}, "test.bin")

	if v, err := ReadLE[uint32](sr, 0, "u32"); err != nil || v != 0x12345678 {
		t.Errorf("ReadLE[uint32] = %#x, %v; want 0x12345678", v, err)
	}
	if v, err := ReadLE[uint8](sr, 3, "u8"); err != nil || v != 0x12 {
		t.Errorf("ReadLE[uint8] = %#x, %v; want 0x12", v, err)
	}
}
