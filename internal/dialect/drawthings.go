package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

// parseDrawThings parses the XMP dialect: an XML packet with a JSON
// object embedded in its user-comment property. The XML wrapper varies
// between versions, so the JSON is located structurally rather than by
// parsing the XML.
func parseDrawThings(payload string) *types.PromptRecord {
	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start < 0 || end <= start {
		return types.ErrorRecord(ToolDrawThings, types.StatusFormatError, payload)
	}

	m, ok := jsonMap([]byte(payload[start : end+1]))
	if !ok {
		return types.ErrorRecord(ToolDrawThings, types.StatusFormatError, payload)
	}

	rec := types.NewRecord(ToolDrawThings)
	rec.Raw = payload
	rec.Positive = getStr(m, "c")
	rec.Negative = getStr(m, "uc")

	setIf(rec.Params, types.ParamModel, modelName(getStr(m, "model")))
	setIf(rec.Params, types.ParamSampler, getStr(m, "sampler"))
	setIf(rec.Params, types.ParamSeed, getStr(m, "seed"))
	setIf(rec.Params, types.ParamCFG, getStr(m, "scale"))
	setIf(rec.Params, types.ParamSteps, getStr(m, "steps"))
	setIf(rec.Params, types.ParamSize, getStr(m, "size"))

	skip := map[string]bool{
		"c": true, "uc": true, "model": true, "sampler": true,
		"seed": true, "scale": true, "steps": true, "size": true,
	}
	for _, key := range sortedKeys(m, skip) {
		if v, ok := scalarString(m[key]); ok {
			rec.Params.Set(strings.ToLower(key), v)
		}
	}
	return rec
}
