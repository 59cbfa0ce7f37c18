package types

// Status reports the outcome of classifying and parsing a container's
// prompt metadata.
type Status int

const (
	// StatusSuccess means metadata was recognized and fully parsed.
	StatusSuccess Status = iota
	// StatusFormatError means metadata was absent, unparsable, or matched
	// a dialect signature but carried a malformed payload.
	StatusFormatError
	// StatusWorkflowError means a node graph was present but no prompt
	// lineage could be resolved from it.
	StatusWorkflowError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFormatError:
		return "format-error"
	case StatusWorkflowError:
		return "workflow-error"
	default:
		return "unknown"
	}
}

// Shared parameter vocabulary. Dialect parsers map their native names onto
// these keys where semantically equivalent; unmapped names are carried
// through lowercased.
const (
	ParamModel   = "model"
	ParamSampler = "sampler"
	ParamSeed    = "seed"
	ParamCFG     = "cfg"
	ParamSteps   = "steps"
	ParamSize    = "size"
)

// Prompt-set slot names used when a record carries more than one prompt
// set (SDXL base/secondary/refiner stages, or independent sampler
// lineages in a workflow graph).
const (
	SlotTextG   = "text_g"
	SlotTextL   = "text_l"
	SlotRefiner = "refiner"
)

// PromptRecord is the normalized result of parsing one dialect payload.
//
// A record is created once by exactly one dialect parser and is immutable
// afterwards. Editing never mutates a record; edits flow through payload
// construction and produce a new record on re-parse.
//
// Invariant: Status == StatusSuccess implies Positive and Negative are
// both defined (possibly empty). On any other status only Raw is
// trustworthy; it carries whatever partial text was salvaged.
type PromptRecord struct {
	// Positive prompt text.
	Positive string

	// Negative prompt text.
	Negative string

	// Raw is the original payload, verbatim.
	Raw string

	// Params holds generation parameters in first-seen order.
	Params *Params

	// MultiSet is true iff at least two of the three prompt-set slots
	// are populated.
	MultiSet bool

	// PositiveSets and NegativeSets hold per-slot prompt text, keyed by
	// SlotTextG, SlotTextL, and SlotRefiner. Nil unless the dialect
	// produced more than one prompt set.
	PositiveSets map[string]string
	NegativeSets map[string]string

	// Status of the parse.
	Status Status

	// Tool identifies the producing tool ("a1111", "comfyui", ...).
	// Empty when no dialect matched.
	Tool string
}

// NewRecord returns a success record for the given tool with an empty
// parameter map.
func NewRecord(tool string) *PromptRecord {
	return &PromptRecord{
		Tool:   tool,
		Status: StatusSuccess,
		Params: NewParams(),
	}
}

// ErrorRecord returns a non-success record preserving the raw payload.
// Positive, Negative, and the prompt sets are left empty so callers never
// mistake salvage for parsed data.
func ErrorRecord(tool string, status Status, raw string) *PromptRecord {
	return &PromptRecord{
		Tool:   tool,
		Status: status,
		Raw:    raw,
		Params: NewParams(),
	}
}

// SetSlot stores per-slot prompt text and keeps MultiSet consistent.
func (r *PromptRecord) SetSlot(slot, positive, negative string) {
	if r.PositiveSets == nil {
		r.PositiveSets = make(map[string]string)
		r.NegativeSets = make(map[string]string)
	}
	r.PositiveSets[slot] = positive
	r.NegativeSets[slot] = negative
	r.MultiSet = len(r.PositiveSets) >= 2
}
