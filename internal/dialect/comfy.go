package dialect

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/graph"
	"github.com/simonhull/promptmeta/internal/types"
)

// parseComfy parses the workflow-graph dialect: the payload is a node
// graph, and the prompt is recovered by tracing sampler lineages
// backward to their text encoders.
func parseComfy(payload string) *types.PromptRecord {
	g, err := graph.Parse([]byte(payload))
	if err != nil {
		return types.ErrorRecord(ToolComfyUI, types.StatusFormatError, payload)
	}

	lineages := graph.Traverse(g)
	if len(lineages) == 0 {
		return types.ErrorRecord(ToolComfyUI, types.StatusWorkflowError, payload)
	}

	rec := types.NewRecord(ToolComfyUI)
	rec.Raw = payload

	best := lineages[0]
	rec.Positive = joinTexts(best.Positive)
	rec.Negative = joinTexts(best.Negative)

	samplerInputs := g[best.Sampler].Inputs
	setIf(rec.Params, types.ParamSampler, getStr(samplerInputs, "sampler_name"))
	setIf(rec.Params, types.ParamSeed, getStr(samplerInputs, "seed", "noise_seed"))
	setIf(rec.Params, types.ParamCFG, getStr(samplerInputs, "cfg"))
	setIf(rec.Params, types.ParamSteps, getStr(samplerInputs, "steps"))
	setIf(rec.Params, "scheduler", getStr(samplerInputs, "scheduler"))
	setIf(rec.Params, "denoise", getStr(samplerInputs, "denoise"))

	if len(lineages) == 1 {
		// A single lineage can still carry several prompt sets when its
		// encoder is a multi-text one.
		for _, slot := range []string{types.SlotTextG, types.SlotTextL, types.SlotRefiner} {
			pos, posOK := slotText(best.Positive, slot)
			neg, negOK := slotText(best.Negative, slot)
			if posOK || negOK {
				rec.SetSlot(slot, pos, neg)
			}
		}
		return rec
	}

	// Independent lineages map onto prompt-set slots in rank order.
	slots := []string{types.SlotTextG, types.SlotTextL, types.SlotRefiner}
	for i, lin := range lineages {
		if i >= len(slots) {
			break
		}
		rec.SetSlot(slots[i], joinTexts(lin.Positive), joinTexts(lin.Negative))
	}
	return rec
}

func joinTexts(texts []graph.Text) string {
	var parts []string
	for _, t := range texts {
		if t.Value != "" {
			parts = append(parts, t.Value)
		}
	}
	return strings.Join(parts, ", ")
}

func slotText(texts []graph.Text, slot string) (string, bool) {
	for _, t := range texts {
		if t.Slot == slot {
			return t.Value, true
		}
	}
	return "", false
}
