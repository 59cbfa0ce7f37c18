package promptmeta

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/simonhull/promptmeta/internal/dialect"
	"github.com/simonhull/promptmeta/internal/png"
	"github.com/simonhull/promptmeta/internal/types"
)

// stripChunks are the dialect-native chunk keys removed when embedding
// a canonical payload, so a stale payload from another dialect cannot
// outrank the fresh one in the classifier cascade.
var stripChunks = []string{
	"postprocessing",
	"negative_prompt",
	"Negative Prompt",
	"invokeai_metadata",
	"sd-metadata",
	"Dream",
	"Software",
	"Description",
	"Source",
	"prompt",
	"Comment",
	"XML:com.adobe.xmp",
}

// SaveAs writes the constructed payload into a new container at
// outputPath.
//
// The payload is embedded as the "parameters" text chunk for PNG, or as
// the EXIF UserComment for JPEG and WEBP. Pixel data is never altered,
// and the input file is never mutated: this is an atomic operation that
// writes a temporary file and renames it into place.
//
// Re-opening the saved file classifies to the canonical dialect and
// reproduces the payload's positive, negative, and parameter values.
func (f *File) SaveAs(outputPath string, payload string, opts ...SaveOption) error {
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	if f.container == nil {
		return &types.WriteError{Path: outputPath, Reason: "plain-text input has no container to embed into"}
	}

	var (
		out []byte
		err error
	)
	switch f.Kind {
	case KindPNG:
		out, err = f.container.WithTexts([]png.TextChunk{{Key: "parameters", Value: payload}}, stripChunks)
	case KindJPEG, KindWEBP:
		out, err = f.container.WithUserComment(payload)
	default:
		return &types.WriteError{Path: outputPath, Reason: "unsupported output container " + f.Kind.String()}
	}
	if err != nil {
		return err
	}

	if err := writeAtomic(outputPath, out, options); err != nil {
		return err
	}

	if options.validate {
		if err := validateWrittenFile(outputPath, payload); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// StripAs writes a copy of the container at outputPath with prompt
// metadata removed: all recognized text chunks for PNG, the EXIF block
// and comment for JPEG, the EXIF chunk for WEBP. Pixel data is never
// altered, so steganographic payloads embedded in channel bits survive.
func (f *File) StripAs(outputPath string, opts ...SaveOption) error {
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	if f.container == nil {
		return &types.WriteError{Path: outputPath, Reason: "plain-text input has no container to strip"}
	}

	keys := append([]string{"parameters"}, stripChunks...)
	out, err := f.container.WithoutMetadata(keys)
	if err != nil {
		return err
	}
	return writeAtomic(outputPath, out, options)
}

// writeAtomic writes data to a temp file in the output directory and
// renames it into place, so a failed write never leaves a truncated
// container behind.
func writeAtomic(outputPath string, data []byte, options *saveOptions) error {
	outputDir := filepath.Dir(outputPath)
	tempFile, err := os.CreateTemp(outputDir, ".promptmeta-*.tmp")
	if err != nil {
		return &types.WriteError{Path: outputPath, Reason: "create temp file", Err: err}
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return &types.WriteError{Path: outputPath, Reason: "write temp file", Err: err}
	}
	if err := tempFile.Sync(); err != nil {
		return &types.WriteError{Path: outputPath, Reason: "sync temp file", Err: err}
	}
	if err := tempFile.Close(); err != nil {
		return &types.WriteError{Path: outputPath, Reason: "close temp file", Err: err}
	}

	if options.backupSuffix != "" {
		backupPath := outputPath + options.backupSuffix
		if _, err := os.Stat(outputPath); err == nil {
			if err := os.Rename(outputPath, backupPath); err != nil {
				return &types.WriteError{Path: outputPath, Reason: "create backup", Err: err}
			}
		}
	}

	if err := os.Rename(tempPath, outputPath); err != nil {
		return &types.WriteError{Path: outputPath, Reason: "rename temp to output", Err: err}
	}
	success = true
	return nil
}

// validateWrittenFile re-opens the written container and checks that it
// classifies to the canonical dialect and reproduces the payload.
func validateWrittenFile(path, payload string) error {
	written, err := Open(path)
	if err != nil {
		return fmt.Errorf("re-open: %w", err)
	}
	if written.Record.Status != StatusSuccess {
		return fmt.Errorf("written record status is %s", written.Record.Status)
	}

	in := dialect.NewInput(nil, []byte(payload), true)
	want := dialect.NoMatch()
	if rule, ok := dialect.Classify(in); ok {
		want = rule.Parse(in)
	}
	if written.Record.Positive != want.Positive {
		return fmt.Errorf("positive mismatch: got %q, want %q", written.Record.Positive, want.Positive)
	}
	if written.Record.Negative != want.Negative {
		return fmt.Errorf("negative mismatch: got %q, want %q", written.Record.Negative, want.Negative)
	}
	return nil
}
