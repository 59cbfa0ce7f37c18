package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

// parseNovelAI parses the legacy chunk layout: positive text in
// Description, a JSON Comment with the negative ("uc") and sampler
// settings, and Software pinned to "NovelAI".
func parseNovelAI(in *Input) *types.PromptRecord {
	desc, _ := in.chunk(chunkDescription)
	comment, _ := in.chunk(chunkComment)
	source, _ := in.chunk(chunkSource)
	raw := strings.TrimSpace(desc + "\n" + comment)

	var settings map[string]any
	if comment != "" {
		m, ok := jsonMap([]byte(comment))
		if !ok {
			return types.ErrorRecord(ToolNovelAI, types.StatusFormatError, raw)
		}
		settings = m
	}

	return novelAIRecord(desc, source, settings, raw)
}

// parseNovelAIStealth parses the steganographic variant: the embedded
// payload is a JSON object mirroring the legacy chunk set, with the
// settings JSON nested as a string under "Comment".
func parseNovelAIStealth(in *Input) *types.PromptRecord {
	payload, ok := in.Stealth()
	if !ok {
		return types.ErrorRecord(ToolNovelAI, types.StatusFormatError, "")
	}

	outer, ok := jsonMap([]byte(payload))
	if !ok {
		return types.ErrorRecord(ToolNovelAI, types.StatusFormatError, payload)
	}

	var settings map[string]any
	if comment := getStr(outer, "Comment"); comment != "" {
		m, ok := jsonMap([]byte(comment))
		if !ok {
			return types.ErrorRecord(ToolNovelAI, types.StatusFormatError, payload)
		}
		settings = m
	}

	return novelAIRecord(getStr(outer, "Description"), getStr(outer, "Source"), settings, payload)
}

func novelAIRecord(description, source string, settings map[string]any, raw string) *types.PromptRecord {
	rec := types.NewRecord(ToolNovelAI)
	rec.Raw = raw
	rec.Positive = strings.TrimSpace(description)

	if settings != nil {
		rec.Negative = getStr(settings, "uc")
		if prompt := getStr(settings, "prompt"); prompt != "" && rec.Positive == "" {
			rec.Positive = prompt
		}
	}

	setIf(rec.Params, types.ParamModel, source)
	if settings != nil {
		setIf(rec.Params, types.ParamSampler, getStr(settings, "sampler"))
		setIf(rec.Params, types.ParamSeed, getStr(settings, "seed"))
		setIf(rec.Params, types.ParamCFG, getStr(settings, "scale"))
		setIf(rec.Params, types.ParamSteps, getStr(settings, "steps"))
		setIf(rec.Params, types.ParamSize, sizeString(settings, "width", "height"))

		skip := map[string]bool{
			"uc": true, "prompt": true, "sampler": true, "seed": true,
			"scale": true, "steps": true, "width": true, "height": true,
		}
		for _, key := range sortedKeys(settings, skip) {
			if v, ok := scalarString(settings[key]); ok {
				rec.Params.Set(strings.ToLower(key), v)
			}
		}
	}
	return rec
}
