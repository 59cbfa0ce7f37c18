package promptmeta

import (
	"strings"

	"github.com/simonhull/promptmeta/internal/types"
)

// settingsOrder fixes the settings-line key order: shared vocabulary
// first, then extras in the parameter map's insertion order. A stable
// order makes constructed payloads byte-for-byte reproducible.
var settingsOrder = []struct {
	key     string
	display string
}{
	{types.ParamSteps, "Steps"},
	{types.ParamSampler, "Sampler"},
	{types.ParamCFG, "CFG scale"},
	{types.ParamSeed, "Seed"},
	{types.ParamSize, "Size"},
	{types.ParamModel, "Model"},
}

// Construct renders edited metadata into the canonical writable
// dialect: the positive text, a literal "Negative prompt:" line, and a
// comma-joined "key: value" settings line in stable key order.
//
// Dialect-specific fields that the canonical dialect cannot represent
// are not Construct's concern; callers pass only what should survive.
// Parsing a constructed payload reproduces the inputs exactly.
func Construct(positive, negative string, params *Params) string {
	var b strings.Builder
	b.WriteString(positive)
	b.WriteString("\nNegative prompt: ")
	b.WriteString(negative)

	if params == nil || params.Len() == 0 {
		return b.String()
	}

	var settings []string
	written := make(map[string]bool)
	for _, entry := range settingsOrder {
		if v, ok := params.Get(entry.key); ok {
			settings = append(settings, entry.display+": "+quoteSetting(v))
			written[entry.key] = true
		}
	}
	for _, key := range params.Keys() {
		if written[key] {
			continue
		}
		v, _ := params.Get(key)
		settings = append(settings, key+": "+quoteSetting(v))
	}

	b.WriteString("\n")
	b.WriteString(strings.Join(settings, ", "))
	return b.String()
}

// quoteSetting wraps values containing commas in double quotes so the
// settings line stays splittable.
func quoteSetting(v string) string {
	if strings.Contains(v, ",") {
		return `"` + v + `"`
	}
	return v
}
