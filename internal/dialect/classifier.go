package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/exif"
	"github.com/simonhull/promptmeta/internal/types"
)

// Rule is one (predicate, dialect) pair of the cascade.
type Rule struct {
	// Name identifies the dialect variant ("invokeai-v2", "novelai-stealth", ...).
	Name string

	// Writable marks the canonical dialect the round-trip writer emits.
	Writable bool

	// When reports whether this rule matches the input. Predicates are
	// pure: no side effects beyond the input's internal probe cache.
	When func(in *Input) bool

	// Parse turns the matched input into a normalized record. Never
	// returns nil and never panics on malformed payloads.
	Parse func(in *Input) *types.PromptRecord
}

// Cascade is the fixed, ordered, non-backtracking rule list. The first
// matching rule wins. Exact, low-collision signatures (EXIF tag IDs,
// tool-specific JSON keys) come before generic ones (a bare "prompt"
// chunk) so a specific dialect's payload cannot be misclassified as a
// more generic one. Do not reorder without a pinned fixture.
var Cascade = []Rule{
	{
		// Plain-text input is canonical parameter text unconditionally.
		Name:     "a1111",
		Writable: true,
		When:     func(in *Input) bool { return in.PlainText },
		Parse:    func(in *Input) *types.PromptRecord { return parseA1111(string(in.Raw)) },
	},
	{
		// Legacy workflow tool stores its JSON blob in the EXIF Model tag.
		Name: "swarmui-exif",
		When: func(in *Input) bool {
			text, ok := exifText(in, exif.TagModel)
			return ok && hasJSONKey(text, "sui_image_params")
		},
		Parse: func(in *Input) *types.PromptRecord {
			text, _ := exifText(in, exif.TagModel)
			return parseSwarm(text)
		},
	},
	{
		Name: "swarmui",
		When: func(in *Input) bool {
			v, ok := in.chunk(chunkParameters)
			return in.kind() == types.KindPNG && ok && strings.Contains(v, "sui_image_params")
		},
		Parse: chunkParser(parseSwarm, chunkParameters),
	},
	{
		Name:     "a1111-png",
		Writable: true,
		When: func(in *Input) bool {
			return in.kind() == types.KindPNG && in.Container.Chunks.Has(chunkParameters)
		},
		Parse: chunkParser(parseA1111, chunkParameters),
	},
	{
		Name: "a1111-postprocess",
		When: func(in *Input) bool {
			return in.kind() == types.KindPNG && in.Container.Chunks.Has(chunkPostprocessing)
		},
		Parse: parseA1111Postprocess,
	},
	{
		Name: "easydiffusion",
		When: func(in *Input) bool {
			_, ok := in.chunk(chunkNegativeLower, chunkNegativeTitle)
			return in.kind() == types.KindPNG && ok
		},
		Parse: parseEasyDiffusion,
	},
	{
		Name: "invokeai-v3",
		When: func(in *Input) bool {
			return in.kind() == types.KindPNG && in.Container.Chunks.Has(chunkInvokeAIv3)
		},
		Parse: chunkParser(parseInvokeAIv3, chunkInvokeAIv3),
	},
	{
		Name: "invokeai-v2",
		When: func(in *Input) bool {
			return in.kind() == types.KindPNG && in.Container.Chunks.Has(chunkInvokeAIv2)
		},
		Parse: chunkParser(parseInvokeAIv2, chunkInvokeAIv2),
	},
	{
		Name: "invokeai-v1",
		When: func(in *Input) bool {
			return in.kind() == types.KindPNG && in.Container.Chunks.Has(chunkInvokeAIv1)
		},
		Parse: chunkParser(parseInvokeAIv1, chunkInvokeAIv1),
	},
	{
		Name: "novelai",
		When: func(in *Input) bool {
			v, ok := in.chunk(chunkSoftware)
			return in.kind() == types.KindPNG && ok && v == "NovelAI"
		},
		Parse: parseNovelAI,
	},
	{
		Name: "comfyui",
		When: func(in *Input) bool {
			return in.kind() == types.KindPNG && in.Container.Chunks.Has(chunkPrompt)
		},
		Parse: chunkParser(parseComfy, chunkPrompt),
	},
	{
		Name: "fooocus-png",
		When: func(in *Input) bool {
			v, ok := in.chunk(chunkComment)
			return in.kind() == types.KindPNG && ok && validJSON(v)
		},
		Parse: chunkParser(parseFooocus, chunkComment),
	},
	{
		Name: "drawthings",
		When: func(in *Input) bool {
			v, ok := in.chunk(chunkXMP)
			return in.kind() == types.KindPNG && ok && strings.Contains(v, "{")
		},
		Parse: chunkParser(parseDrawThings, chunkXMP),
	},
	{
		// Steganographic payload in the low-order channel bits. Only
		// containers that actually carry an alpha channel are probed.
		Name: "novelai-stealth",
		When: func(in *Input) bool {
			k := in.kind()
			if (k != types.KindPNG && k != types.KindWEBP) || in.Container.ColorMode != "RGBA" {
				return false
			}
			_, ok := in.Stealth()
			return ok
		},
		Parse: parseNovelAIStealth,
	},
	{
		Name: "fooocus",
		When: func(in *Input) bool {
			k := in.kind()
			if k != types.KindJPEG && k != types.KindWEBP {
				return false
			}
			return in.Container.Comment != "" && validJSON(in.Container.Comment)
		},
		Parse: func(in *Input) *types.PromptRecord { return parseFooocus(in.Container.Comment) },
	},
	{
		// Canonical parameter text carried in the EXIF UserComment.
		Name:     "a1111-exif",
		Writable: true,
		When: func(in *Input) bool {
			k := in.kind()
			if k != types.KindJPEG && k != types.KindWEBP {
				return false
			}
			text, ok := exifText(in, exif.TagUserComment)
			return ok && text != ""
		},
		Parse: func(in *Input) *types.PromptRecord {
			text, _ := exifText(in, exif.TagUserComment)
			return parseA1111(text)
		},
	},
}

// Classify evaluates the cascade and returns the first matching rule.
// It is deterministic: identical input always selects the identical rule.
func Classify(in *Input) (*Rule, bool) {
	for i := range Cascade {
		if Cascade[i].When(in) {
			return &Cascade[i], true
		}
	}
	return nil, false
}

// NoMatch is the terminal record when no rule matches: format error,
// tool undefined.
func NoMatch() *types.PromptRecord {
	return types.ErrorRecord("", types.StatusFormatError, "")
}

func exifText(in *Input, tag uint16) (string, bool) {
	if in.Container == nil {
		return "", false
	}
	return in.Container.ExifText(tag)
}

// chunkParser adapts a payload-string parser to the rule signature.
func chunkParser(parse func(string) *types.PromptRecord, keys ...string) func(*Input) *types.PromptRecord {
	return func(in *Input) *types.PromptRecord {
		payload, _ := in.chunk(keys...)
		return parse(payload)
	}
}
