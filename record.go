package promptmeta

import (
	"github.com/simonhull/promptmeta/internal/types"
)

// PromptRecord is an alias to types.PromptRecord.
// Re-exporting from internal/types to keep the public API in one module path.
type PromptRecord = types.PromptRecord

// Params is an alias to types.Params.
// Re-exporting from internal/types to keep the public API in one module path.
type Params = types.Params

// Status is an alias to types.Status.
// Re-exporting from internal/types to keep the public API in one module path.
type Status = types.Status

// Re-export all status constants.
const (
	StatusSuccess       = types.StatusSuccess
	StatusFormatError   = types.StatusFormatError
	StatusWorkflowError = types.StatusWorkflowError
)

// Re-export the shared parameter vocabulary.
const (
	ParamModel   = types.ParamModel
	ParamSampler = types.ParamSampler
	ParamSeed    = types.ParamSeed
	ParamCFG     = types.ParamCFG
	ParamSteps   = types.ParamSteps
	ParamSize    = types.ParamSize
)

// Re-export the prompt-set slot names.
const (
	SlotTextG   = types.SlotTextG
	SlotTextL   = types.SlotTextL
	SlotRefiner = types.SlotRefiner
)

// NewParams returns an empty ordered parameter map.
func NewParams() *Params {
	return types.NewParams()
}
