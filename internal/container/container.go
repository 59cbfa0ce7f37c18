// Package container is the adapter between raw image bytes and the
// metadata engine: it detects the container kind, exposes dimensions,
// color mode, the ordered text-chunk mapping, and the EXIF tag table,
// and produces new container bytes on write-back.
//
// Pixel decoding is delegated to the standard image codecs (and
// golang.org/x/image for WEBP); it happens lazily and only when the
// steganographic probe needs channel bytes.
package container

import (
	"bytes"
	"image"
	"image/color"
	stdjpeg "image/jpeg"
	stdpng "image/png"
	"sync"

	xwebp "golang.org/x/image/webp"

	"github.com/simonhull/promptmeta/internal/exif"
	"github.com/simonhull/promptmeta/internal/jpeg"
	"github.com/simonhull/promptmeta/internal/png"
	"github.com/simonhull/promptmeta/internal/types"
)

// Container is the opened-image abstraction. It is read-only: the engine
// never mutates a container after Decode; writes produce new bytes.
type Container struct {
	Kind      types.Kind
	Width     int
	Height    int
	ColorMode string

	// Chunks holds PNG text chunks in stream order. Empty for other kinds.
	Chunks *TextChunks

	// Exif is the raw EXIF tag table, nil when absent.
	Exif map[uint16]exif.Value

	// Comment is the JPEG COM segment content. Empty for other kinds.
	Comment string

	Warnings []types.Warning

	data []byte
	path string

	pixOnce sync.Once
	pix     []byte
	pixErr  error
}

// Decode opens raw container bytes.
//
// Returns UnsupportedFormatError for unknown kinds and
// CorruptedFileError for broken container structure. Malformed metadata
// inside a structurally valid container never fails Decode.
func Decode(data []byte, path string) (*Container, error) {
	c := &Container{
		Kind:   types.DetectKind(data),
		Chunks: NewTextChunks(),
		data:   data,
		path:   path,
	}

	switch c.Kind {
	case types.KindPNG:
		info, err := png.Decode(data, path)
		if err != nil {
			return nil, err
		}
		c.Width, c.Height = info.Width, info.Height
		c.ColorMode = info.ColorMode()
		c.Warnings = info.Warnings
		for _, tc := range info.Texts {
			c.Chunks.Add(tc.Key, tc.Value)
		}

	case types.KindJPEG:
		info, err := jpeg.Decode(data, path)
		if err != nil {
			return nil, err
		}
		c.Width, c.Height = info.Width, info.Height
		c.ColorMode = info.ColorMode()
		c.Comment = info.Comment
		c.Warnings = info.Warnings
		c.parseExif(info.Exif)

	case types.KindWEBP:
		info, err := newWebpInfo(data, path)
		if err != nil {
			return nil, err
		}
		c.Width, c.Height = info.Width, info.Height
		c.ColorMode = info.ColorMode()
		c.Warnings = info.Warnings
		c.parseExif(info.Exif)

	default:
		return nil, &types.UnsupportedFormatError{Path: path, Reason: "not a PNG, JPEG, or WEBP container"}
	}

	return c, nil
}

func (c *Container) parseExif(raw []byte) {
	if raw == nil {
		return
	}
	tags, err := exif.Parse(raw)
	if err != nil {
		c.Warnings = append(c.Warnings, types.Warning{
			Stage:   "exif",
			Message: "undecodable EXIF block: " + err.Error(),
		})
		return
	}
	c.Exif = tags
}

// Bytes returns the original container bytes. The slice must not be
// modified.
func (c *Container) Bytes() []byte {
	return c.data
}

// Path returns the path the container was opened from.
func (c *Container) Path() string {
	return c.path
}

// ExifText returns the decoded text of an EXIF tag, if present.
func (c *Container) ExifText(tag uint16) (string, bool) {
	v, ok := c.Exif[tag]
	if !ok {
		return "", false
	}
	return v.Text(), true
}

// Pix returns the image's channel bytes in NRGBA raster order, decoding
// pixels on first use. Used only by the steganographic probe.
func (c *Container) Pix() ([]byte, error) {
	c.pixOnce.Do(func() {
		c.pix, c.pixErr = decodePix(c.data, c.Kind)
	})
	return c.pix, c.pixErr
}

func decodePix(data []byte, kind types.Kind) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	switch kind {
	case types.KindPNG:
		img, err = stdpng.Decode(bytes.NewReader(data))
	case types.KindJPEG:
		img, err = stdjpeg.Decode(bytes.NewReader(data))
	case types.KindWEBP:
		img, err = xwebp.Decode(bytes.NewReader(data))
	default:
		return nil, &types.UnsupportedFormatError{Reason: "no pixel codec for " + kind.String()}
	}
	if err != nil {
		return nil, err
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba.Pix, nil
	}

	bounds := img.Bounds()
	out := make([]byte, 0, bounds.Dx()*bounds.Dy()*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := nrgbaAt(img, x, y)
			out = append(out, r, g, b, a)
		}
	}
	return out, nil
}

func nrgbaAt(img image.Image, x, y int) (byte, byte, byte, byte) {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return c.R, c.G, c.B, c.A
}

// WithTexts returns new PNG container bytes with the given text chunks
// replaced or removed. Pixel data is never altered.
func (c *Container) WithTexts(set []png.TextChunk, remove []string) ([]byte, error) {
	if c.Kind != types.KindPNG {
		return nil, &types.WriteError{Path: c.path, Reason: "text chunks require a PNG container"}
	}
	return png.SetTexts(c.data, c.path, set, remove)
}

// WithUserComment returns new JPEG/WEBP container bytes with the EXIF
// block replaced by a minimal one whose UserComment holds payload.
// Pixel data is never altered.
func (c *Container) WithUserComment(payload string) ([]byte, error) {
	tiff := exif.Build(payload)
	switch c.Kind {
	case types.KindJPEG:
		return jpeg.SetExif(c.data, c.path, tiff)
	case types.KindWEBP:
		return webpSetExif(c.data, c.path, tiff)
	default:
		return nil, &types.WriteError{Path: c.path, Reason: "EXIF write-back requires a JPEG or WEBP container"}
	}
}

// WithoutMetadata returns new container bytes with prompt metadata
// removed: the named text chunks for PNG, the EXIF block and comment for
// JPEG, the EXIF chunk for WEBP. Payloads hidden in pixel channel bits
// are not touched; removing those would require re-encoding pixels.
func (c *Container) WithoutMetadata(chunkKeys []string) ([]byte, error) {
	switch c.Kind {
	case types.KindPNG:
		return png.SetTexts(c.data, c.path, nil, chunkKeys)
	case types.KindJPEG:
		return jpeg.Strip(c.data, c.path)
	case types.KindWEBP:
		return webpStripExif(c.data, c.path)
	default:
		return nil, &types.WriteError{Path: c.path, Reason: "metadata strip requires a PNG, JPEG, or WEBP container"}
	}
}
