package container

import (
	"bytes"
	"image"
	stdjpeg "image/jpeg"
	stdpng "image/png"
	"testing"

	"github.com/simonhull/promptmeta/internal/exif"
	"github.com/simonhull/promptmeta/internal/png"
	"github.com/simonhull/promptmeta/internal/types"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
	var buf bytes.Buffer
	if err := stdjpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	data, err := png.SetTexts(encodePNG(t), "fixture.png",
		[]png.TextChunk{{Key: "parameters", Value: "hello"}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	c, err := Decode(data, "fixture.png")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if c.Kind != types.KindPNG {
		t.Errorf("Kind = %v, want PNG", c.Kind)
	}
	if c.Width != 16 || c.Height != 12 {
		t.Errorf("dimensions = %dx%d, want 16x12", c.Width, c.Height)
	}
	if c.ColorMode != "RGBA" {
		t.Errorf("ColorMode = %q, want RGBA", c.ColorMode)
	}
	if v, ok := c.Chunks.Get("parameters"); !ok || v != "hello" {
		t.Errorf("Chunks.Get(parameters) = %q, %v", v, ok)
	}
}

func TestDecodeJPEG(t *testing.T) {
	c, err := Decode(encodeJPEG(t), "fixture.jpg")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if c.Kind != types.KindJPEG {
		t.Errorf("Kind = %v, want JPEG", c.Kind)
	}
	if c.Width != 16 || c.Height != 12 {
		t.Errorf("dimensions = %dx%d, want 16x12", c.Width, c.Height)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte("BM bitmap header junk"), "x.bmp")
	if err == nil {
		t.Fatal("Decode() error = nil, want UnsupportedFormatError")
	}
	if _, ok := err.(*types.UnsupportedFormatError); !ok {
		t.Errorf("error type = %T, want *types.UnsupportedFormatError", err)
	}
}

func TestPixLazyDecode(t *testing.T) {
	c, err := Decode(encodePNG(t), "fixture.png")
	if err != nil {
		t.Fatal(err)
	}
	pix, err := c.Pix()
	if err != nil {
		t.Fatalf("Pix() error = %v", err)
	}
	if len(pix) != 16*12*4 {
		t.Errorf("len(pix) = %d, want %d NRGBA bytes", len(pix), 16*12*4)
	}

	// Second call returns the cached raster.
	again, err := c.Pix()
	if err != nil || &again[0] != &pix[0] {
		t.Error("Pix() did not cache the first decode")
	}
}

func TestWithUserCommentJPEGRoundTrip(t *testing.T) {
	c, err := Decode(encodeJPEG(t), "fixture.jpg")
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.WithUserComment("embedded prompt")
	if err != nil {
		t.Fatalf("WithUserComment() error = %v", err)
	}

	c2, err := Decode(out, "out.jpg")
	if err != nil {
		t.Fatalf("Decode(rebuilt) error = %v", err)
	}
	text, ok := c2.ExifText(exif.TagUserComment)
	if !ok || text != "embedded prompt" {
		t.Errorf("ExifText(UserComment) = %q, %v", text, ok)
	}
}

func TestWithTextsRequiresPNG(t *testing.T) {
	c, err := Decode(encodeJPEG(t), "fixture.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.WithTexts([]png.TextChunk{{Key: "k", Value: "v"}}, nil); err == nil {
		t.Error("WithTexts() on JPEG: error = nil, want WriteError")
	}
}

func TestTextChunksFirstOccurrenceWins(t *testing.T) {
	tc := NewTextChunks()
	tc.Add("parameters", "first")
	tc.Add("parameters", "second")
	tc.Add("other", "x")

	if v, _ := tc.Get("parameters"); v != "first" {
		t.Errorf("Get(parameters) = %q, want first occurrence", v)
	}
	if tc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tc.Len())
	}
	keys := tc.Keys()
	if keys[0] != "parameters" || keys[1] != "other" {
		t.Errorf("Keys() = %v, want stream order", keys)
	}
}
