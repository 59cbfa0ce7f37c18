package promptmeta

import (
	"github.com/simonhull/promptmeta/internal/types"
)

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
// Re-exporting from internal/types to keep the public API in one module path.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
// Re-exporting from internal/types to keep the public API in one module path.
type CorruptedFileError = types.CorruptedFileError

// CapacityError is an alias to types.CapacityError.
// Re-exporting from internal/types to keep the public API in one module path.
type CapacityError = types.CapacityError

// WriteError is an alias to types.WriteError.
// Re-exporting from internal/types to keep the public API in one module path.
type WriteError = types.WriteError

// Warning is an alias to types.Warning.
// Re-exporting from internal/types to keep the public API in one module path.
type Warning = types.Warning
