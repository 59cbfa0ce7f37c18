package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

// parseSwarm parses the legacy workflow tool's JSON blob, found either
// under the "sui_image_params" key of the parameters chunk or in the
// EXIF Model tag.
func parseSwarm(payload string) *types.PromptRecord {
	m, ok := jsonMap([]byte(payload))
	if !ok {
		return types.ErrorRecord(ToolSwarmUI, types.StatusFormatError, payload)
	}
	params, ok := m["sui_image_params"].(map[string]any)
	if !ok {
		return types.ErrorRecord(ToolSwarmUI, types.StatusFormatError, payload)
	}

	rec := types.NewRecord(ToolSwarmUI)
	rec.Raw = payload
	rec.Positive = getStr(params, "prompt")
	rec.Negative = getStr(params, "negativeprompt", "negative_prompt")

	setIf(rec.Params, types.ParamModel, modelName(getStr(params, "model")))
	setIf(rec.Params, types.ParamSampler, getStr(params, "sampler", "comfyuisampler"))
	setIf(rec.Params, types.ParamSeed, getStr(params, "seed"))
	setIf(rec.Params, types.ParamCFG, getStr(params, "cfgscale", "cfg_scale"))
	setIf(rec.Params, types.ParamSteps, getStr(params, "steps"))
	setIf(rec.Params, types.ParamSize, sizeString(params, "width", "height"))

	skip := map[string]bool{
		"prompt": true, "negativeprompt": true, "negative_prompt": true,
		"model": true, "sampler": true, "comfyuisampler": true,
		"seed": true, "cfgscale": true, "cfg_scale": true,
		"steps": true, "width": true, "height": true,
	}
	for _, key := range sortedKeys(params, skip) {
		if v, ok := scalarString(params[key]); ok {
			rec.Params.Set(strings.ToLower(key), v)
		}
	}
	return rec
}

// setIf stores a parameter only when the value is non-empty, keeping the
// shared keys in canonical order at the front of the map.
func setIf(p *types.Params, key, value string) {
	if value != "" {
		p.Set(key, value)
	}
}
