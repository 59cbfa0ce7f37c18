package dialect

import (
	"testing"

	"github.com/simonhull/promptmeta/internal/types"
)

func wantParam(t *testing.T, rec *types.PromptRecord, key, want string) {
	t.Helper()
	if got, _ := rec.Params.Get(key); got != want {
		t.Errorf("param %q = %q, want %q", key, got, want)
	}
}

func TestParseA1111Full(t *testing.T) {
	payload := "a majestic cat, detailed fur\nNegative prompt: blurry, low quality\n" +
		`Steps: 20, Sampler: Euler a, CFG scale: 7, Seed: 42, Size: 512x768, Model: dreamshaper_8, Clip skip: 2`

	rec := parseA1111(payload)
	if rec.Status != types.StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.Positive != "a majestic cat, detailed fur" {
		t.Errorf("Positive = %q", rec.Positive)
	}
	if rec.Negative != "blurry, low quality" {
		t.Errorf("Negative = %q", rec.Negative)
	}
	wantParam(t, rec, types.ParamSteps, "20")
	wantParam(t, rec, types.ParamSampler, "Euler a")
	wantParam(t, rec, types.ParamCFG, "7")
	wantParam(t, rec, types.ParamSeed, "42")
	wantParam(t, rec, types.ParamSize, "512x768")
	wantParam(t, rec, types.ParamModel, "dreamshaper_8")
	wantParam(t, rec, "clip skip", "2")
	if rec.Raw != payload {
		t.Error("Raw should preserve the payload verbatim")
	}
}

func TestParseA1111QuotedSettingValue(t *testing.T) {
	payload := "portrait\nSteps: 30, Hires upscaler: \"4x-UltraSharp, fp16\", Seed: 1"
	rec := parseA1111(payload)
	wantParam(t, rec, "hires upscaler", "4x-UltraSharp, fp16")
	wantParam(t, rec, types.ParamSeed, "1")
}

func TestParseA1111Variants(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		wantPositive string
		wantNegative string
	}{
		{"no negative no settings", "just a prompt", "just a prompt", ""},
		{"negative only", "cat\nNegative prompt: dog", "cat", "dog"},
		{"multiline positive", "line one\nline two\nNegative prompt: bad", "line one\nline two", "bad"},
		{"settings only", "Steps: 20, Seed: 5", "", ""},
		{"marker mid-line is literal", "say Negative prompt: aloud", "say Negative prompt: aloud", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := parseA1111(tt.payload)
			if rec.Status != types.StatusSuccess {
				t.Fatalf("Status = %v, want success", rec.Status)
			}
			if rec.Positive != tt.wantPositive || rec.Negative != tt.wantNegative {
				t.Errorf("prompts = %q / %q, want %q / %q", rec.Positive, rec.Negative, tt.wantPositive, tt.wantNegative)
			}
		})
	}
}

func TestParseA1111Empty(t *testing.T) {
	rec := parseA1111("   \n  ")
	if rec.Status != types.StatusFormatError {
		t.Errorf("Status = %v, want format error on empty payload", rec.Status)
	}
}

func TestParseA1111Postprocess(t *testing.T) {
	in := pngInput(
		[2]string{"parameters", "cat\nSteps: 20"},
		[2]string{"postprocessing", "GFPGAN, upscale 2x"},
	)
	rec := parseA1111Postprocess(in)
	if rec.Status != types.StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.Positive != "cat" {
		t.Errorf("Positive = %q", rec.Positive)
	}
	wantParam(t, rec, "postprocessing", "GFPGAN, upscale 2x")

	// Postprocessing chunk alone still yields a success record.
	in = pngInput([2]string{"postprocessing", "upscale"})
	rec = parseA1111Postprocess(in)
	if rec.Status != types.StatusSuccess {
		t.Errorf("Status = %v, want success without parameters chunk", rec.Status)
	}
	wantParam(t, rec, "postprocessing", "upscale")
}

func TestParseSwarm(t *testing.T) {
	payload := `{"sui_image_params":{"prompt":"a fox","negativeprompt":"winter",` +
		`"model":"models/flux-dev.safetensors","seed":123,"cfgscale":3.5,"steps":30,` +
		`"width":1024,"height":1024,"swarm_version":"0.9.5"}}`

	rec := parseSwarm(payload)
	if rec.Status != types.StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.Positive != "a fox" || rec.Negative != "winter" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamModel, "flux-dev")
	wantParam(t, rec, types.ParamSeed, "123")
	wantParam(t, rec, types.ParamCFG, "3.5")
	wantParam(t, rec, types.ParamSize, "1024x1024")
	wantParam(t, rec, "swarm_version", "0.9.5")
}

func TestParseSwarmMalformed(t *testing.T) {
	if rec := parseSwarm(`{"other":true}`); rec.Status != types.StatusFormatError {
		t.Errorf("Status = %v, want format error without sui_image_params", rec.Status)
	}
	if rec := parseSwarm("not json"); rec.Status != types.StatusFormatError {
		t.Errorf("Status = %v, want format error on junk", rec.Status)
	}
}

func TestParseEasyDiffusion(t *testing.T) {
	in := pngInput(
		[2]string{"prompt", "a lighthouse"},
		[2]string{"negative_prompt", "fog"},
		[2]string{"seed", "7"},
		[2]string{"num_inference_steps", "25"},
		[2]string{"guidance_scale", "7.5"},
		[2]string{"width", "512"},
		[2]string{"height", "512"},
		[2]string{"use_stable_diffusion_model", "C:\\models\\sd-v1-5.ckpt"},
	)
	rec := parseEasyDiffusion(in)
	if rec.Positive != "a lighthouse" || rec.Negative != "fog" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamSeed, "7")
	wantParam(t, rec, types.ParamSteps, "25")
	wantParam(t, rec, types.ParamCFG, "7.5")
	wantParam(t, rec, types.ParamSize, "512x512")
	wantParam(t, rec, types.ParamModel, "sd-v1-5")
}

func TestParseEasyDiffusionTitleCase(t *testing.T) {
	in := pngInput(
		[2]string{"Prompt", "a castle"},
		[2]string{"Negative Prompt", "people"},
		[2]string{"Sampler", "euler_a"},
	)
	rec := parseEasyDiffusion(in)
	if rec.Positive != "a castle" || rec.Negative != "people" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamSampler, "euler_a")
}

func TestParseInvokeAIv3(t *testing.T) {
	payload := `{"positive_prompt":"a ship at sea","negative_prompt":"calm water",` +
		`"model":{"model_name":"juggernaut-xl"},"scheduler":"dpmpp_2m","seed":555,` +
		`"cfg_scale":6,"steps":28,"width":1216,"height":832}`

	rec := parseInvokeAIv3(payload)
	if rec.Positive != "a ship at sea" || rec.Negative != "calm water" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamModel, "juggernaut-xl")
	wantParam(t, rec, types.ParamSampler, "dpmpp_2m")
	wantParam(t, rec, types.ParamSize, "1216x832")
	if rec.MultiSet {
		t.Error("MultiSet = true without style prompts")
	}
}

func TestParseInvokeAIv3StylePrompts(t *testing.T) {
	payload := `{"positive_prompt":"base","negative_prompt":"bad",` +
		`"positive_style_prompt":"oil painting","negative_style_prompt":"photo"}`

	rec := parseInvokeAIv3(payload)
	if !rec.MultiSet {
		t.Fatal("MultiSet = false, want style prompts to open a second set")
	}
	if rec.PositiveSets[types.SlotTextG] != "base" || rec.PositiveSets[types.SlotRefiner] != "oil painting" {
		t.Errorf("PositiveSets = %v", rec.PositiveSets)
	}
}

func TestParseInvokeAIv2(t *testing.T) {
	payload := `{"model_weights":"stable-diffusion-1.5",` +
		`"image":{"prompt":"a knight [helmet] riding","sampler":"k_lms","seed":99,` +
		`"cfg_scale":7.5,"steps":50,"width":512,"height":512}}`

	rec := parseInvokeAIv2(payload)
	if rec.Positive != "a knight riding" {
		t.Errorf("Positive = %q, want bracket negative removed", rec.Positive)
	}
	if rec.Negative != "helmet" {
		t.Errorf("Negative = %q", rec.Negative)
	}
	wantParam(t, rec, types.ParamModel, "stable-diffusion-1.5")
	wantParam(t, rec, types.ParamSampler, "k_lms")
}

func TestParseInvokeAIv2WeightedPromptList(t *testing.T) {
	payload := `{"image":{"prompt":[{"prompt":"weighted text","weight":1}],"seed":3}}`
	rec := parseInvokeAIv2(payload)
	if rec.Positive != "weighted text" {
		t.Errorf("Positive = %q, want prompt from weighted list", rec.Positive)
	}
}

func TestParseInvokeAIv1(t *testing.T) {
	payload := `"an old tower [scaffolding]" -s 50 -S 424242 -W 512 -H 768 -C 7.5 -A k_euler`
	rec := parseInvokeAIv1(payload)
	if rec.Positive != "an old tower" || rec.Negative != "scaffolding" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamSteps, "50")
	wantParam(t, rec, types.ParamSeed, "424242")
	wantParam(t, rec, types.ParamCFG, "7.5")
	wantParam(t, rec, types.ParamSampler, "k_euler")
	wantParam(t, rec, types.ParamSize, "512x768")
}

func TestParseInvokeAIv1AttachedFlagValues(t *testing.T) {
	rec := parseInvokeAIv1(`"cat" -s50 -S42`)
	wantParam(t, rec, types.ParamSteps, "50")
	wantParam(t, rec, types.ParamSeed, "42")
}

func TestParseInvokeAIv1Malformed(t *testing.T) {
	if rec := parseInvokeAIv1("no quote at all"); rec.Status != types.StatusFormatError {
		t.Errorf("Status = %v, want format error", rec.Status)
	}
	if rec := parseInvokeAIv1(`"unterminated`); rec.Status != types.StatusFormatError {
		t.Errorf("Status = %v, want format error", rec.Status)
	}
}

func TestSplitBracketNegative(t *testing.T) {
	tests := []struct {
		in      string
		wantPos string
		wantNeg string
	}{
		{"cat [dog]", "cat", "dog"},
		{"cat [dog] [ugly] tree", "cat tree", "dog, ugly"},
		{"no negatives", "no negatives", ""},
		{"unclosed [bracket text", "unclosed [bracket text", ""},
		{"[only negative]", "", "only negative"},
	}
	for _, tt := range tests {
		pos, neg := splitBracketNegative(tt.in)
		if pos != tt.wantPos || neg != tt.wantNeg {
			t.Errorf("splitBracketNegative(%q) = %q / %q, want %q / %q", tt.in, pos, neg, tt.wantPos, tt.wantNeg)
		}
	}
}

func TestParseNovelAI(t *testing.T) {
	in := pngInput(
		[2]string{"Software", "NovelAI"},
		[2]string{"Description", "a girl in the rain"},
		[2]string{"Source", "NAI Diffusion V3"},
		[2]string{"Comment", `{"uc":"lowres, bad anatomy","sampler":"k_euler_ancestral","seed":1234,"scale":11,"steps":28}`},
	)
	rec := parseNovelAI(in)
	if rec.Status != types.StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.Positive != "a girl in the rain" || rec.Negative != "lowres, bad anatomy" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamModel, "NAI Diffusion V3")
	wantParam(t, rec, types.ParamCFG, "11")
	wantParam(t, rec, types.ParamSampler, "k_euler_ancestral")
}

func TestParseNovelAIBrokenComment(t *testing.T) {
	in := pngInput(
		[2]string{"Software", "NovelAI"},
		[2]string{"Description", "salvageable"},
		[2]string{"Comment", `{"uc": broken`},
	)
	rec := parseNovelAI(in)
	if rec.Status != types.StatusFormatError {
		t.Fatalf("Status = %v, want format error", rec.Status)
	}
	if rec.Positive != "" {
		t.Error("error record must not expose parsed prompts")
	}
	if rec.Raw == "" {
		t.Error("Raw should carry the salvaged payload")
	}
}

func TestParseComfySingleLineage(t *testing.T) {
	payload := `{
		"1":{"class_type":"CLIPTextEncode","inputs":{"text":"a temple in the mountains"}},
		"2":{"class_type":"CLIPTextEncode","inputs":{"text":"people, cars"}},
		"3":{"class_type":"KSampler","inputs":{"positive":["1",0],"negative":["2",0],
			"seed":860011,"cfg":8,"steps":20,"sampler_name":"euler","scheduler":"normal","denoise":1}}
	}`
	rec := parseComfy(payload)
	if rec.Status != types.StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.Positive != "a temple in the mountains" || rec.Negative != "people, cars" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamSeed, "860011")
	wantParam(t, rec, types.ParamCFG, "8")
	wantParam(t, rec, types.ParamSteps, "20")
	wantParam(t, rec, types.ParamSampler, "euler")
	wantParam(t, rec, "scheduler", "normal")
	if rec.MultiSet {
		t.Error("MultiSet = true for a single plain lineage")
	}
}

func TestParseComfySDXLLineage(t *testing.T) {
	payload := `{
		"1":{"class_type":"CLIPTextEncodeSDXL","inputs":{"text_g":"global","text_l":"local"}},
		"2":{"class_type":"CLIPTextEncode","inputs":{"text":"neg"}},
		"3":{"class_type":"KSampler","inputs":{"positive":["1",0],"negative":["2",0]}}
	}`
	rec := parseComfy(payload)
	if !rec.MultiSet {
		t.Fatal("MultiSet = false, want SDXL encoder to populate two slots")
	}
	if rec.PositiveSets[types.SlotTextG] != "global" || rec.PositiveSets[types.SlotTextL] != "local" {
		t.Errorf("PositiveSets = %v", rec.PositiveSets)
	}
}

func TestParseComfyMultipleLineages(t *testing.T) {
	payload := `{
		"1":{"class_type":"CLIPTextEncode","inputs":{"text":"base pass"}},
		"2":{"class_type":"CLIPTextEncode","inputs":{"text":"bad"}},
		"3":{"class_type":"KSampler","inputs":{"positive":["1",0],"negative":["2",0]}},
		"4":{"class_type":"CLIPTextEncode","inputs":{"text":"refiner pass"}},
		"5":{"class_type":"KSampler","inputs":{"positive":["4",0],"negative":["2",0]}}
	}`
	rec := parseComfy(payload)
	if !rec.MultiSet {
		t.Fatal("MultiSet = false, want two lineages mapped to slots")
	}
	if rec.PositiveSets[types.SlotTextG] != "base pass" || rec.PositiveSets[types.SlotTextL] != "refiner pass" {
		t.Errorf("PositiveSets = %v, want lineages in rank order", rec.PositiveSets)
	}
}

func TestParseComfyErrors(t *testing.T) {
	if rec := parseComfy("{oops"); rec.Status != types.StatusFormatError {
		t.Errorf("Status = %v, want format error on bad JSON", rec.Status)
	}

	// Valid graph, but nothing resolvable behind the sampler.
	payload := `{"1":{"class_type":"KSampler","inputs":{"positive":["9",0],"negative":["9",0]}}}`
	rec := parseComfy(payload)
	if rec.Status != types.StatusWorkflowError {
		t.Errorf("Status = %v, want workflow error", rec.Status)
	}
	if rec.Raw != payload {
		t.Error("workflow error must preserve the raw graph")
	}
}

func TestParseFooocus(t *testing.T) {
	payload := `{"prompt":"cinematic city","negative_prompt":"cartoon",` +
		`"base_model_name":"juggernautXL_v8.safetensors","sampler_name":"dpmpp_2m_sde_gpu",` +
		`"seed":"127","guidance_scale":4,"steps":30,"resolution":"(1152, 896)","version":"Fooocus v2.1"}`

	rec := parseFooocus(payload)
	if rec.Status != types.StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.Positive != "cinematic city" || rec.Negative != "cartoon" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamModel, "juggernautXL_v8")
	wantParam(t, rec, types.ParamCFG, "4")
	wantParam(t, rec, types.ParamSize, "1152x896")
	wantParam(t, rec, "version", "Fooocus v2.1")
}

func TestResolutionString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(1024, 1024)", "1024x1024"},
		{"(512,768)", "512x768"},
		{"1024", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := resolutionString(tt.in); got != tt.want {
			t.Errorf("resolutionString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDrawThings(t *testing.T) {
	payload := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF><rdf:Description>` +
		`{"c":"a watercolor bird","uc":"text, watermark","model":"sd_v1.5.ckpt",` +
		`"sampler":"DPM++ 2M Karras","seed":700,"scale":6.5,"steps":32,"size":"512x512"}` +
		`</rdf:Description></rdf:RDF></x:xmpmeta>`

	rec := parseDrawThings(payload)
	if rec.Status != types.StatusSuccess {
		t.Fatalf("Status = %v, want success", rec.Status)
	}
	if rec.Positive != "a watercolor bird" || rec.Negative != "text, watermark" {
		t.Errorf("prompts = %q / %q", rec.Positive, rec.Negative)
	}
	wantParam(t, rec, types.ParamModel, "sd_v1.5")
	wantParam(t, rec, types.ParamCFG, "6.5")
	wantParam(t, rec, types.ParamSize, "512x512")
}

func TestParseDrawThingsNoJSON(t *testing.T) {
	if rec := parseDrawThings("<xmp>nothing here</xmp>"); rec.Status != types.StatusFormatError {
		t.Errorf("Status = %v, want format error", rec.Status)
	}
}

func TestJSONMapToleratesAlmostJSON(t *testing.T) {
	m, ok := jsonMap([]byte(`{"prompt":"x", /* comment */ "seed":1,}`))
	if !ok {
		t.Fatal("jsonMap() failed on commented JSON")
	}
	if m["prompt"] != "x" {
		t.Errorf("prompt = %v", m["prompt"])
	}
}

func TestModelName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"models/sdxl/base.safetensors", "base"},
		{"C:\\ckpts\\model.ckpt", "model"},
		{"plain-name", "plain-name"},
		{"keeps.other.ext", "keeps.other.ext"},
	}
	for _, tt := range tests {
		if got := modelName(tt.in); got != tt.want {
			t.Errorf("modelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
