package promptmeta

// Option configures how files are opened and parsed.
type Option func(*openOptions)

type openOptions struct {
	plainText      bool
	strictParsing  bool
	ignoreWarnings bool
}

func defaultOptions() *openOptions {
	return &openOptions{}
}

// WithPlainText treats the input as a bare parameter payload instead of
// an image container. Useful for .txt sidecar files produced alongside
// generated images.
//
//	file, err := promptmeta.Open("image.txt", promptmeta.WithPlainText())
func WithPlainText() Option {
	return func(o *openOptions) {
		o.plainText = true
	}
}

// WithStrictParsing makes container warnings fatal. By default
// recoverable problems (a bad chunk checksum, undecodable EXIF) are
// collected into File.Warnings and parsing continues.
func WithStrictParsing() Option {
	return func(o *openOptions) {
		o.strictParsing = true
	}
}

// WithIgnoreWarnings discards container warnings instead of collecting
// them. Mutually exclusive with WithStrictParsing; if both are set,
// strict parsing sees no warnings and therefore never fails.
func WithIgnoreWarnings() Option {
	return func(o *openOptions) {
		o.ignoreWarnings = true
	}
}
