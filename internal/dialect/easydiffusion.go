package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

// parseEasyDiffusion parses the dialect that spreads each field over its
// own text chunk, in both snake_case and Title Case spellings.
func parseEasyDiffusion(in *Input) *types.PromptRecord {
	ch := in.Container.Chunks

	get := func(keys ...string) string {
		for _, key := range keys {
			if v, ok := ch.Get(key); ok {
				return v
			}
		}
		return ""
	}

	// The raw payload is the chunk set itself; reassemble it verbatim in
	// stream order.
	var raw strings.Builder
	for _, key := range ch.Keys() {
		v, _ := ch.Get(key)
		raw.WriteString(key)
		raw.WriteString(": ")
		raw.WriteString(v)
		raw.WriteString("\n")
	}

	rec := types.NewRecord(ToolEasyDiffusion)
	rec.Raw = strings.TrimRight(raw.String(), "\n")
	rec.Positive = get("prompt", "Prompt")
	rec.Negative = get(chunkNegativeLower, chunkNegativeTitle)

	setIf(rec.Params, types.ParamModel, modelName(get("use_stable_diffusion_model", "Stable Diffusion model")))
	setIf(rec.Params, types.ParamSampler, get("sampler_name", "Sampler"))
	setIf(rec.Params, types.ParamSeed, get("seed", "Seed"))
	setIf(rec.Params, types.ParamCFG, get("guidance_scale", "Guidance Scale"))
	setIf(rec.Params, types.ParamSteps, get("num_inference_steps", "Steps"))

	w := get("width", "Width")
	h := get("height", "Height")
	if w != "" && h != "" {
		rec.Params.Set(types.ParamSize, w+"x"+h)
	}
	return rec
}
