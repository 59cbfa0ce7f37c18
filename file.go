package promptmeta

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/promptmeta/internal/container"
	"github.com/simonhull/promptmeta/internal/dialect"
	"github.com/simonhull/promptmeta/internal/exif"
)

// File represents an opened image with classified prompt metadata.
//
// Opening a file runs the full pipeline: container decode, dialect
// classification, and parsing into a normalized Record. The record is
// immutable; edits flow through Construct and SaveAs, which produce a
// new file rather than mutating this one.
//
//	file, err := promptmeta.Open("image.png")
//	if err != nil {
//		return err
//	}
//	fmt.Println(file.Record.Positive)
type File struct {
	// Path the file was opened from ("" for FromBytes).
	Path string

	// Detected container kind (PNG, JPEG, WEBP, or Text).
	Kind Kind

	// Image dimensions in pixels (zero for plain-text input).
	Width  int
	Height int

	// Color mode ("RGB", "RGBA", "L", "P", ...).
	ColorMode string

	// Dialect is the name of the matched cascade rule ("" when no
	// dialect matched). The producing tool is Record.Tool.
	Dialect string

	// Record is the normalized prompt metadata. Never nil; a failed
	// parse is reported through Record.Status.
	Record *PromptRecord

	// Warnings encountered while reading the container (non-fatal).
	Warnings []Warning

	container *container.Container
}

// Open reads an image file and extracts its prompt metadata.
//
// Supported containers: PNG, JPEG, WEBP. Plain-text parameter files are
// supported via WithPlainText.
//
// Open returns an error only for container-level problems: unreadable
// file, unsupported kind, corrupted structure. Metadata problems demote
// Record.Status instead, so a file with unreadable metadata still opens
// and exposes any salvaged raw text.
func Open(path string, opts ...Option) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return FromBytes(data, path, opts...)
}

// FromBytes extracts prompt metadata from an in-memory image buffer.
// The path is used only for error messages and may be empty.
func FromBytes(data []byte, path string, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.plainText {
		in := dialect.NewInput(nil, data, true)
		return finish(&File{Path: path, Kind: KindText}, in, options)
	}

	c, err := container.Decode(data, path)
	if err != nil {
		return nil, err
	}

	file := &File{
		Path:      path,
		Kind:      c.Kind,
		Width:     c.Width,
		Height:    c.Height,
		ColorMode: c.ColorMode,
		Warnings:  c.Warnings,
		container: c,
	}
	return finish(file, dialect.NewInput(c, data, false), options)
}

func finish(file *File, in *dialect.Input, options *openOptions) (*File, error) {
	if rule, ok := dialect.Classify(in); ok {
		file.Dialect = rule.Name
		file.Record = rule.Parse(in)
	} else {
		file.Record = dialect.NoMatch()
	}

	if options.ignoreWarnings {
		file.Warnings = nil
	}
	if options.strictParsing && len(file.Warnings) > 0 {
		return nil, fmt.Errorf("strict parsing failed: %s", file.Warnings[0].Message)
	}
	return file, nil
}

// RawChunk returns the value of a named text chunk, if the container
// carries one. Useful for inspecting dialect-native payloads directly.
func (f *File) RawChunk(key string) (string, bool) {
	if f.container == nil {
		return "", false
	}
	return f.container.Chunks.Get(key)
}

// ChunkKeys returns the container's text-chunk keys in stream order.
func (f *File) ChunkKeys() []string {
	if f.container == nil {
		return nil
	}
	return f.container.Chunks.Keys()
}

// UserComment returns the EXIF UserComment text, if the container
// carries one.
func (f *File) UserComment() (string, bool) {
	if f.container == nil {
		return "", false
	}
	return f.container.ExifText(exif.TagUserComment)
}

// OpenContext opens a file with context support for cancellation.
//
// This is a thin wrapper around Open() that checks the context before
// starting; every operation afterwards is bounded by the image's size.
func OpenContext(ctx context.Context, path string, opts ...Option) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

// OpenMany opens multiple image files concurrently.
//
// Files are parsed in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths. The core
// pipeline shares no mutable state, so parallel opens need no
// coordination.
//
// If any file fails to open, an error is returned and the results are
// discarded.
func OpenMany(ctx context.Context, paths ...string) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*File, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			file, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Tools returns the producing-tool identifiers the classifier can
// report, in cascade order. Exposed for CLI help output.
func Tools() []string {
	return []string{
		dialect.ToolA1111, dialect.ToolSwarmUI, dialect.ToolEasyDiffusion,
		dialect.ToolInvokeAI, dialect.ToolNovelAI, dialect.ToolComfyUI,
		dialect.ToolFooocus, dialect.ToolDrawThings,
	}
}
