package types

import "fmt"

// UnsupportedFormatError is returned when the container kind is not
// PNG, JPEG, or WEBP.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported container: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when the container structure itself is
// invalid. Malformed metadata payloads never produce this error; they
// demote the record status instead.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted container at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// CapacityError is returned when a steganographic payload does not fit
// the target image's channel capacity. Nothing is written when this
// error is returned.
type CapacityError struct {
	NeededBits    int
	AvailableBits int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("payload needs %d bits but image provides %d", e.NeededBits, e.AvailableBits)
}

// WriteError is returned when an output container could not be produced.
type WriteError struct {
	Path   string
	Reason string
	Err    error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: write failed: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: write failed: %s", e.Path, e.Reason)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Warning represents a non-fatal issue encountered while reading a
// container. Warnings indicate problems that don't prevent metadata
// extraction but may point at corrupted or unusual data (bad chunk CRCs,
// undecodable EXIF entries, oversized fields).
type Warning struct {
	// Stage where the warning occurred ("container", "exif", "chunk", ...)
	Stage string

	// Warning message
	Message string

	// Byte offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
