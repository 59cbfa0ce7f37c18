package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

const negativeMarker = "Negative prompt:"

// settingsKeys maps the canonical dialect's display names onto the
// shared parameter vocabulary.
var settingsKeys = map[string]string{
	"Steps":     types.ParamSteps,
	"Sampler":   types.ParamSampler,
	"CFG scale": types.ParamCFG,
	"Seed":      types.ParamSeed,
	"Size":      types.ParamSize,
	"Model":     types.ParamModel,
}

// parseA1111 parses the canonical writable dialect: positive text, an
// optional "Negative prompt:" line, and a trailing comma-joined
// "key: value" settings line.
func parseA1111(payload string) *types.PromptRecord {
	text := strings.TrimSpace(payload)
	if text == "" {
		return types.ErrorRecord(ToolA1111, types.StatusFormatError, payload)
	}

	rec := types.NewRecord(ToolA1111)
	rec.Raw = payload

	body := text
	if line, rest, ok := splitSettingsLine(text); ok {
		body = rest
		for _, kv := range splitSettings(line) {
			key := kv[0]
			if mapped, ok := settingsKeys[key]; ok {
				key = mapped
			} else {
				key = strings.ToLower(key)
			}
			rec.Params.Set(key, kv[1])
		}
	}

	positive := body
	negative := ""
	if idx := negativeIndex(body); idx >= 0 {
		positive = body[:idx]
		negative = strings.TrimSpace(strings.TrimPrefix(body[idx:], negativeMarker))
	}
	rec.Positive = strings.TrimSpace(positive)
	rec.Negative = negative
	return rec
}

// negativeIndex finds the negative marker at the start of a line.
func negativeIndex(body string) int {
	if strings.HasPrefix(body, negativeMarker) {
		return 0
	}
	if idx := strings.Index(body, "\n"+negativeMarker); idx >= 0 {
		return idx + 1
	}
	return -1
}

// splitSettingsLine detaches the trailing settings line, identified by
// carrying at least one known "Key:" prefix. Prompt text containing a
// stray colon on its last line does not qualify.
func splitSettingsLine(text string) (line, rest string, ok bool) {
	idx := strings.LastIndex(text, "\n")
	last := text
	if idx >= 0 {
		last = text[idx+1:]
	}
	for display := range settingsKeys {
		if strings.Contains(last, display+":") {
			if idx < 0 {
				// The whole payload is one settings line.
				return last, "", true
			}
			return last, text[:idx], true
		}
	}
	return "", text, false
}

// splitSettings splits a "k1: v1, k2: v2" line into pairs, honoring
// double-quoted values that contain commas.
func splitSettings(line string) [][2]string {
	var pairs [][2]string
	var part strings.Builder
	inQuotes := false

	flush := func() {
		s := strings.TrimSpace(part.String())
		part.Reset()
		if s == "" {
			return
		}
		key, value, found := strings.Cut(s, ":")
		if !found {
			return
		}
		pairs = append(pairs, [2]string{
			strings.TrimSpace(key),
			strings.Trim(strings.TrimSpace(value), `"`),
		})
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			part.WriteRune(r)
		case r == ',' && !inQuotes:
			flush()
		default:
			part.WriteRune(r)
		}
	}
	flush()
	return pairs
}

// parseA1111Postprocess handles the postprocess variant: the usual
// parameter text (when present) plus a "postprocessing" chunk describing
// the applied postprocessors.
func parseA1111Postprocess(in *Input) *types.PromptRecord {
	post, _ := in.chunk(chunkPostprocessing)
	params, hasParams := in.chunk(chunkParameters)

	var rec *types.PromptRecord
	if hasParams {
		rec = parseA1111(params)
		if rec.Status != types.StatusSuccess {
			rec.Raw = strings.TrimSpace(params + "\n" + post)
			return rec
		}
	} else {
		rec = types.NewRecord(ToolA1111)
	}
	rec.Raw = strings.TrimSpace(params + "\n" + post)
	rec.Params.Set("postprocessing", post)
	return rec
}
