package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

// parseFooocus parses the JSON comment dialect (PNG Comment chunk or
// JPEG/WEBP comment field).
func parseFooocus(payload string) *types.PromptRecord {
	m, ok := jsonMap([]byte(payload))
	if !ok {
		return types.ErrorRecord(ToolFooocus, types.StatusFormatError, payload)
	}

	rec := types.NewRecord(ToolFooocus)
	rec.Raw = payload
	rec.Positive = getStr(m, "prompt")
	rec.Negative = getStr(m, "negative_prompt")

	setIf(rec.Params, types.ParamModel, modelName(getStr(m, "base_model_name", "base_model")))
	setIf(rec.Params, types.ParamSampler, getStr(m, "sampler_name", "sampler"))
	setIf(rec.Params, types.ParamSeed, getStr(m, "seed"))
	setIf(rec.Params, types.ParamCFG, getStr(m, "guidance_scale", "cfg_scale"))
	setIf(rec.Params, types.ParamSteps, getStr(m, "steps"))

	if size := resolutionString(getStr(m, "resolution")); size != "" {
		rec.Params.Set(types.ParamSize, size)
	} else {
		setIf(rec.Params, types.ParamSize, sizeString(m, "width", "height"))
	}

	skip := map[string]bool{
		"prompt": true, "negative_prompt": true,
		"base_model_name": true, "base_model": true,
		"sampler_name": true, "sampler": true,
		"seed": true, "guidance_scale": true, "cfg_scale": true,
		"steps": true, "resolution": true, "width": true, "height": true,
	}
	for _, key := range sortedKeys(m, skip) {
		if v, ok := scalarString(m[key]); ok {
			rec.Params.Set(strings.ToLower(key), v)
		}
	}
	return rec
}

// resolutionString normalizes the "(1024, 1024)" resolution spelling to
// "1024x1024".
func resolutionString(res string) string {
	res = strings.Trim(strings.TrimSpace(res), "()")
	w, h, found := strings.Cut(res, ",")
	if !found {
		return ""
	}
	w = strings.TrimSpace(w)
	h = strings.TrimSpace(h)
	if w == "" || h == "" {
		return ""
	}
	return w + "x" + h
}
