package container

// Thin indirection over the internal webp walker, kept separate so the
// main file can import golang.org/x/image/webp for pixel decoding
// without a name clash.

import (
	iwebp "github.com/simonhull/promptmeta/internal/webp"
)

func newWebpInfo(data []byte, path string) (*iwebp.Info, error) {
	return iwebp.Decode(data, path)
}

func webpSetExif(data []byte, path string, tiff []byte) ([]byte, error) {
	return iwebp.SetExif(data, path, tiff)
}

func webpStripExif(data []byte, path string) ([]byte, error) {
	return iwebp.StripExif(data, path)
}
