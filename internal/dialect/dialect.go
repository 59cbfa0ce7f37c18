// Package dialect recognizes the metadata encodings of the known
// producing tools and parses each into a normalized prompt record.
//
// Selection happens through one fixed, ordered predicate cascade
// (classifier.go). Parsers never return errors: any parse fault demotes
// the record's status while preserving the raw payload.
package dialect

import (
	"github.com/simonhull/promptmeta/internal/container"
	"github.com/simonhull/promptmeta/internal/stealth"
	"github.com/simonhull/promptmeta/internal/types"
)

// PNG chunk keys and EXIF tags recognized by the cascade. These names
// are the wire contract with the ecosystem of producing tools; renaming
// one breaks compatibility with files already in the wild.
const (
	chunkParameters     = "parameters"
	chunkPostprocessing = "postprocessing"
	chunkNegativeLower  = "negative_prompt"
	chunkNegativeTitle  = "Negative Prompt"
	chunkInvokeAIv3     = "invokeai_metadata"
	chunkInvokeAIv2     = "sd-metadata"
	chunkInvokeAIv1     = "Dream"
	chunkSoftware       = "Software"
	chunkDescription    = "Description"
	chunkSource         = "Source"
	chunkPrompt         = "prompt"
	chunkComment        = "Comment"
	chunkXMP            = "XML:com.adobe.xmp"
)

// Tool identifiers reported in PromptRecord.Tool.
const (
	ToolA1111         = "a1111"
	ToolSwarmUI       = "swarmui"
	ToolEasyDiffusion = "easydiffusion"
	ToolInvokeAI      = "invokeai"
	ToolNovelAI       = "novelai"
	ToolComfyUI       = "comfyui"
	ToolFooocus       = "fooocus"
	ToolDrawThings    = "drawthings"
)

// Input is everything the classifier and parsers may look at: the opened
// container, the raw byte buffer, and the plain-text flag. The
// steganographic probe result is computed at most once per input.
type Input struct {
	Container *container.Container
	Raw       []byte
	PlainText bool

	stealthDone bool
	stealthVal  string
	stealthOK   bool
}

// NewInput wraps a decoded container for classification.
func NewInput(c *container.Container, raw []byte, plainText bool) *Input {
	return &Input{Container: c, Raw: raw, PlainText: plainText}
}

// Stealth runs the steganographic probe, caching the result. A container
// whose pixels cannot be decoded simply probes negative.
func (in *Input) Stealth() (string, bool) {
	if !in.stealthDone {
		in.stealthDone = true
		if in.Container != nil {
			pix, err := in.Container.Pix()
			if err == nil {
				in.stealthVal, in.stealthOK = stealth.Decode(pix)
			}
		}
	}
	return in.stealthVal, in.stealthOK
}

func (in *Input) kind() types.Kind {
	if in.Container == nil {
		return types.KindText
	}
	return in.Container.Kind
}

func (in *Input) chunk(keys ...string) (string, bool) {
	if in.Container == nil {
		return "", false
	}
	for _, key := range keys {
		if v, ok := in.Container.Chunks.Get(key); ok {
			return v, true
		}
	}
	return "", false
}
