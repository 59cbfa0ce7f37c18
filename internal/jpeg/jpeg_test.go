package jpeg

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/simonhull/promptmeta/internal/exif"
)

// buildJPEG assembles a minimal JPEG from marker segments plus fake
// entropy data.
func buildJPEG(segments ...func(*bytes.Buffer)) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8}) // SOI
	for _, seg := range segments {
		seg(&buf)
	}
	// SOS with a token entropy payload and EOI.
	writeSegment(&buf, 0xDA, []byte{1, 1, 0, 0x3F, 0})
	buf.Write([]byte{0x12, 0x34, 0x56})
	buf.Write([]byte{0xFF, 0xD9})
	return buf.Bytes()
}

func writeSegment(buf *bytes.Buffer, marker byte, body []byte) {
	buf.Write([]byte{0xFF, marker})
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(body)+2))
	buf.Write(l[:])
	buf.Write(body)
}

func sof(width, height, components int) func(*bytes.Buffer) {
	return func(buf *bytes.Buffer) {
		body := make([]byte, 6+components*3)
		body[0] = 8
		binary.BigEndian.PutUint16(body[1:3], uint16(height))
		binary.BigEndian.PutUint16(body[3:5], uint16(width))
		body[5] = byte(components)
		writeSegment(buf, 0xC0, body)
	}
}

func com(text string) func(*bytes.Buffer) {
	return func(buf *bytes.Buffer) {
		writeSegment(buf, 0xFE, []byte(text))
	}
}

func app0() func(*bytes.Buffer) {
	return func(buf *bytes.Buffer) {
		writeSegment(buf, 0xE0, []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"))
	}
}

func app1Exif(tiff []byte) func(*bytes.Buffer) {
	return func(buf *bytes.Buffer) {
		writeSegment(buf, 0xE1, append([]byte(exifHeader), tiff...))
	}
}

func TestDecodeBasics(t *testing.T) {
	data := buildJPEG(app0(), sof(640, 480, 3), com("a comment"))

	info, err := Decode(data, "test.jpg")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if info.Width != 640 || info.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", info.Width, info.Height)
	}
	if info.ColorMode() != "RGB" {
		t.Errorf("ColorMode() = %q, want RGB", info.ColorMode())
	}
	if info.Comment != "a comment" {
		t.Errorf("Comment = %q, want %q", info.Comment, "a comment")
	}
	if info.Exif != nil {
		t.Errorf("Exif = %v, want nil", info.Exif)
	}
}

func TestDecodeExifSegment(t *testing.T) {
	tiff := exif.Build("prompt text")
	data := buildJPEG(app0(), app1Exif(tiff), sof(100, 100, 3))

	info, err := Decode(data, "test.jpg")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(info.Exif, tiff) {
		t.Error("Exif bytes do not match the embedded TIFF block")
	}

	tags, err := exif.Parse(info.Exif)
	if err != nil {
		t.Fatalf("exif.Parse() error = %v", err)
	}
	if got := tags[exif.TagUserComment].Text(); got != "prompt text" {
		t.Errorf("UserComment = %q, want %q", got, "prompt text")
	}
}

func TestDecodeRejectsMissingSOI(t *testing.T) {
	if _, err := Decode([]byte("GIF89a junk"), "bad.jpg"); err == nil {
		t.Error("Decode() error = nil, want CorruptedFileError")
	}
}

func TestDecodeRejectsTruncatedSegment(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1, 0xFF, 0xFF, 0x00})
	if _, err := Decode(buf.Bytes(), "bad.jpg"); err == nil {
		t.Error("Decode() error = nil, want truncated segment error")
	}
}

func TestSetExifRoundTrip(t *testing.T) {
	original := buildJPEG(app0(), app1Exif(exif.Build("old")), com("stale comment"), sof(320, 240, 3))
	tiff := exif.Build("new payload")

	out, err := SetExif(original, "test.jpg", tiff)
	if err != nil {
		t.Fatalf("SetExif() error = %v", err)
	}

	info, err := Decode(out, "out.jpg")
	if err != nil {
		t.Fatalf("Decode(rebuilt) error = %v", err)
	}
	if info.Comment != "" {
		t.Errorf("Comment = %q, want stale comment dropped", info.Comment)
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("dimensions = %dx%d, want geometry preserved", info.Width, info.Height)
	}

	tags, err := exif.Parse(info.Exif)
	if err != nil {
		t.Fatalf("exif.Parse() error = %v", err)
	}
	if got := tags[exif.TagUserComment].Text(); got != "new payload" {
		t.Errorf("UserComment = %q, want %q", got, "new payload")
	}

	// Entropy data must be copied through untouched.
	if !bytes.Contains(out, []byte{0x12, 0x34, 0x56}) {
		t.Error("entropy data missing from rebuilt stream")
	}
}

func TestSetExifWithoutApp0(t *testing.T) {
	original := buildJPEG(sof(64, 64, 1))
	out, err := SetExif(original, "test.jpg", exif.Build("p"))
	if err != nil {
		t.Fatalf("SetExif() error = %v", err)
	}

	info, err := Decode(out, "out.jpg")
	if err != nil {
		t.Fatalf("Decode(rebuilt) error = %v", err)
	}
	if info.Exif == nil {
		t.Fatal("Exif missing from rebuilt stream")
	}
}

func TestStripRemovesExifAndComment(t *testing.T) {
	original := buildJPEG(app0(), app1Exif(exif.Build("secret")), com("note"), sof(64, 64, 3))

	out, err := Strip(original, "test.jpg")
	if err != nil {
		t.Fatalf("Strip() error = %v", err)
	}

	info, err := Decode(out, "out.jpg")
	if err != nil {
		t.Fatalf("Decode(stripped) error = %v", err)
	}
	if info.Exif != nil {
		t.Error("Exif survived the strip")
	}
	if info.Comment != "" {
		t.Errorf("Comment = %q, want removed", info.Comment)
	}
	if info.Width != 64 {
		t.Error("geometry lost during strip")
	}
	if !bytes.Contains(out, []byte{0x12, 0x34, 0x56}) {
		t.Error("entropy data missing from stripped stream")
	}
}

func TestSetExifOversizedPayload(t *testing.T) {
	original := buildJPEG(sof(64, 64, 3))
	huge := make([]byte, 0x10000)
	if _, err := SetExif(original, "test.jpg", huge); err == nil {
		t.Error("SetExif() error = nil, want segment capacity error")
	}
}
