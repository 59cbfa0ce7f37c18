package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

// Three generations of the same tool's metadata, oldest chunk formats
// kept readable because files outlive the tool versions that wrote them.

// parseInvokeAIv3 parses the current JSON chunk.
func parseInvokeAIv3(payload string) *types.PromptRecord {
	m, ok := jsonMap([]byte(payload))
	if !ok {
		return types.ErrorRecord(ToolInvokeAI, types.StatusFormatError, payload)
	}

	rec := types.NewRecord(ToolInvokeAI)
	rec.Raw = payload
	rec.Positive = getStr(m, "positive_prompt")
	rec.Negative = getStr(m, "negative_prompt")

	model := getStr(m, "model")
	if model == "" {
		if mm, ok := m["model"].(map[string]any); ok {
			model = getStr(mm, "model_name", "name")
		}
	}
	setIf(rec.Params, types.ParamModel, modelName(model))
	setIf(rec.Params, types.ParamSampler, getStr(m, "scheduler"))
	setIf(rec.Params, types.ParamSeed, getStr(m, "seed"))
	setIf(rec.Params, types.ParamCFG, getStr(m, "cfg_scale"))
	setIf(rec.Params, types.ParamSteps, getStr(m, "steps"))
	setIf(rec.Params, types.ParamSize, sizeString(m, "width", "height"))

	// SDXL style prompts ride along as an extra prompt set.
	stylePos := getStr(m, "positive_style_prompt")
	styleNeg := getStr(m, "negative_style_prompt")
	if stylePos != "" || styleNeg != "" {
		rec.SetSlot(types.SlotTextG, rec.Positive, rec.Negative)
		rec.SetSlot(types.SlotRefiner, stylePos, styleNeg)
	}
	return rec
}

// parseInvokeAIv2 parses the intermediate JSON chunk, whose prompt text
// carries the negative inline in square brackets.
func parseInvokeAIv2(payload string) *types.PromptRecord {
	m, ok := jsonMap([]byte(payload))
	if !ok {
		return types.ErrorRecord(ToolInvokeAI, types.StatusFormatError, payload)
	}

	image, _ := m["image"].(map[string]any)
	if image == nil {
		return types.ErrorRecord(ToolInvokeAI, types.StatusFormatError, payload)
	}

	prompt := getStr(image, "prompt")
	if prompt == "" {
		// Older builds wrap the prompt in a weighted list.
		if list, ok := image["prompt"].([]any); ok && len(list) > 0 {
			if entry, ok := list[0].(map[string]any); ok {
				prompt = getStr(entry, "prompt")
			}
		}
	}

	rec := types.NewRecord(ToolInvokeAI)
	rec.Raw = payload
	rec.Positive, rec.Negative = splitBracketNegative(prompt)

	setIf(rec.Params, types.ParamModel, modelName(getStr(m, "model_weights")))
	setIf(rec.Params, types.ParamSampler, getStr(image, "sampler"))
	setIf(rec.Params, types.ParamSeed, getStr(image, "seed"))
	setIf(rec.Params, types.ParamCFG, getStr(image, "cfg_scale"))
	setIf(rec.Params, types.ParamSteps, getStr(image, "steps"))
	setIf(rec.Params, types.ParamSize, sizeString(image, "width", "height"))
	return rec
}

// parseInvokeAIv1 parses the oldest format: a quoted prompt followed by
// single-letter flags, e.g. `"cat [dog]" -s 50 -S 42 -W 512 -H 512 -C 7.5 -A k_lms`.
func parseInvokeAIv1(payload string) *types.PromptRecord {
	text := strings.TrimSpace(payload)
	if len(text) == 0 || text[0] != '"' {
		return types.ErrorRecord(ToolInvokeAI, types.StatusFormatError, payload)
	}
	end := strings.Index(text[1:], `"`)
	if end < 0 {
		return types.ErrorRecord(ToolInvokeAI, types.StatusFormatError, payload)
	}

	rec := types.NewRecord(ToolInvokeAI)
	rec.Raw = payload
	rec.Positive, rec.Negative = splitBracketNegative(text[1 : end+1])

	flags := map[string]string{}
	fields := strings.Fields(text[end+2:])
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if len(tok) < 2 || tok[0] != '-' {
			continue
		}
		letter := tok[1:2]
		value := tok[2:]
		if value == "" && i+1 < len(fields) {
			i++
			value = fields[i]
		}
		flags[letter] = value
	}

	var width, height string
	for letter, value := range map[string]*string{"W": &width, "H": &height} {
		if v, ok := flags[letter]; ok {
			*value = v
		}
	}
	setIf(rec.Params, types.ParamSampler, flags["A"])
	setIf(rec.Params, types.ParamSeed, flags["S"])
	setIf(rec.Params, types.ParamCFG, flags["C"])
	setIf(rec.Params, types.ParamSteps, flags["s"])
	if width != "" && height != "" {
		rec.Params.Set(types.ParamSize, width+"x"+height)
	}
	return rec
}

// splitBracketNegative separates the inline [negative] convention:
// "cat [dog] [ugly]" -> ("cat", "dog, ugly"). Brackets never nest.
func splitBracketNegative(prompt string) (string, string) {
	var positive strings.Builder
	var negatives []string
	var current strings.Builder
	inBracket := false

	for _, r := range prompt {
		switch {
		case r == '[' && !inBracket:
			inBracket = true
		case r == ']' && inBracket:
			inBracket = false
			if s := strings.TrimSpace(current.String()); s != "" {
				negatives = append(negatives, s)
			}
			current.Reset()
		case inBracket:
			current.WriteRune(r)
		default:
			positive.WriteRune(r)
		}
	}
	// An unclosed bracket reads as literal text.
	if inBracket {
		positive.WriteString("[")
		positive.WriteString(current.String())
	}

	pos := strings.Join(strings.Fields(positive.String()), " ")
	return pos, strings.Join(negatives, ", ")
}
