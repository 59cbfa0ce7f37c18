// Package promptmeta extracts, normalizes, and re-embeds AI-image
// generation metadata across the incompatible conventions of the tools
// that produce it.
//
// Image generators hide their prompt text and generation parameters in
// PNG text chunks, EXIF tags, JSON comments, workflow graphs, and even
// the low-order bits of pixel channels, each in its own undocumented
// dialect. promptmeta detects which dialect a file speaks, parses it
// into one normalized PromptRecord, and can write edited metadata back
// in the canonical dialect.
//
// # Quick Start
//
//	file, err := promptmeta.Open("image.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(file.Record.Tool, file.Record.Status)
//	fmt.Println(file.Record.Positive)
//
// # Dialects
//
// The classifier recognizes, among others: canonical parameter text
// (and its postprocess variant), workflow-tool JSON blobs, per-field
// chunk sets, three generations of JSON metadata chunks, JSON comments,
// XMP-embedded JSON, node-graph payloads, and steganographic payloads
// hidden in RGBA channel bits. Detection is an ordered predicate
// cascade; the first matching rule wins and the order is pinned by
// tests.
//
// # Error Handling
//
// Malformed metadata never produces an error: the record's Status
// demotes to a format or workflow error while Raw preserves whatever
// text was salvaged. Only container-level problems (unreadable file,
// unsupported or corrupted container, failed write) surface as errors.
//
// # Writing
//
// Edits always flow through Construct, which renders the canonical
// dialect, and SaveAs, which embeds it as a PNG text chunk or an EXIF
// user comment. Pixel data is never altered; re-opening a saved file
// reproduces the constructed values.
//
//	payload := promptmeta.Construct("cat", "dog", params)
//	err := file.SaveAs("out.png", payload, promptmeta.WithValidation())
package promptmeta
