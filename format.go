package promptmeta

import (
	"github.com/simonhull/promptmeta/internal/types"
)

// Kind is an alias to types.Kind.
// Re-exporting from internal/types to keep the public API in one module path.
type Kind = types.Kind

// Re-export all container kind constants.
const (
	KindUnknown = types.KindUnknown
	KindPNG     = types.KindPNG
	KindJPEG    = types.KindJPEG
	KindWEBP    = types.KindWEBP
	KindText    = types.KindText
)

// DetectKind determines the container kind from magic bytes.
// Maintains the public API while delegating to the internal implementation.
func DetectKind(data []byte) Kind {
	return types.DetectKind(data)
}
