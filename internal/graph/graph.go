// Package graph performs best-effort backward traversal over workflow
// node graphs to recover prompt lineages.
//
// The graph schema is external and undocumented: node classes come from
// an open ecosystem and cycles can appear in hand-edited files. Traversal
// is therefore defensive throughout — unknown classes end a branch,
// revisited nodes abort a lineage, and recursion depth is hard-capped.
package graph

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed nodes.yaml
var nodesYAML []byte

// maxDepth bounds backward traversal on adversarial or corrupted graphs.
const maxDepth = 64

// Node is one graph vertex. Inputs map input names either to literal
// values or to edges of the form [nodeID, outputIndex].
type Node struct {
	ClassType string         `json:"class_type"`
	Inputs    map[string]any `json:"inputs"`
}

// Graph maps node identifiers to nodes.
type Graph map[string]Node

// Text is one literal prompt text collected from an encoder node, tagged
// with the prompt-set slot it belongs to ("" for the plain single slot).
type Text struct {
	Slot  string
	Value string
}

// Lineage is the traced backward path from one sampler node to its
// resolvable text-encoder ancestors.
type Lineage struct {
	// Sampler is the originating sampler node identifier.
	Sampler string
	// Positive and Negative hold the collected conditioning texts.
	Positive []Text
	Negative []Text
	// Depth is the longest resolved chain length behind this sampler.
	Depth int
}

// Resolved reports whether the lineage recovered any non-empty positive text.
func (l Lineage) Resolved() bool {
	for _, t := range l.Positive {
		if t.Value != "" {
			return true
		}
	}
	return false
}

// Parse decodes a node-graph JSON payload.
func Parse(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse node graph: %w", err)
	}
	if len(g) == 0 {
		return nil, fmt.Errorf("parse node graph: no nodes")
	}
	return g, nil
}

// Traverse walks backward from every known sampler node and returns the
// resolved lineages, ranked by longest chain first and lexicographically
// smallest sampler identifier on ties.
func Traverse(g Graph) []Lineage {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lineages []Lineage
	for _, id := range ids {
		node := g[id]
		if !nodeTable.sampler(node.ClassType) {
			continue
		}

		// Independent visited sets per conditioning branch: the positive
		// and negative chains legitimately share ancestors.
		pos, posDepth := walk(g, node.Inputs["positive"], map[string]bool{id: true}, 0)
		neg, negDepth := walk(g, node.Inputs["negative"], map[string]bool{id: true}, 0)

		lin := Lineage{Sampler: id, Positive: pos, Negative: neg, Depth: max(posDepth, negDepth)}
		if lin.Resolved() {
			lineages = append(lineages, lin)
		}
	}

	sort.SliceStable(lineages, func(i, j int) bool {
		if lineages[i].Depth != lineages[j].Depth {
			return lineages[i].Depth > lineages[j].Depth
		}
		return lineages[i].Sampler < lineages[j].Sampler
	})
	return lineages
}

// walk follows one input edge backward, collecting encoder texts.
func walk(g Graph, ref any, visited map[string]bool, depth int) ([]Text, int) {
	if depth >= maxDepth {
		return nil, 0
	}
	id, ok := edgeTarget(ref)
	if !ok {
		return nil, 0
	}
	if visited[id] {
		// Cycle guard: this lineage branch terminates here.
		return nil, 0
	}
	visited[id] = true

	node, ok := g[id]
	if !ok {
		return nil, 0
	}

	if fields, ok := nodeTable.Encoders[node.ClassType]; ok {
		var texts []Text
		for _, field := range fields {
			value, ok := literalString(g, node.Inputs[field])
			if !ok {
				continue
			}
			texts = append(texts, Text{Slot: slotFor(node.ClassType, field), Value: value})
		}
		return texts, 1
	}

	if nodeTable.passthrough(node.ClassType) {
		var texts []Text
		best := 0
		for _, input := range node.Inputs {
			if _, isEdge := edgeTarget(input); !isEdge {
				continue
			}
			sub, subDepth := walk(g, input, visited, depth+1)
			texts = append(texts, sub...)
			if subDepth > best {
				best = subDepth
			}
		}
		if best == 0 {
			return texts, 0
		}
		return texts, best + 1
	}

	// Unknown or custom node class: end this branch, best effort.
	return nil, 0
}

// edgeTarget decodes the [nodeID, outputIndex] edge shape.
func edgeTarget(ref any) (string, bool) {
	edge, ok := ref.([]any)
	if !ok || len(edge) < 1 {
		return "", false
	}
	id, ok := edge[0].(string)
	return id, ok
}

// literalString resolves an encoder text field: either a literal string
// or a one-hop edge to a primitive node carrying the string.
func literalString(g Graph, ref any) (string, bool) {
	if s, ok := ref.(string); ok {
		return s, true
	}
	id, ok := edgeTarget(ref)
	if !ok {
		return "", false
	}
	node, ok := g[id]
	if !ok {
		return "", false
	}
	for _, field := range []string{"value", "string", "text"} {
		if s, ok := node.Inputs[field].(string); ok {
			return s, true
		}
	}
	return "", false
}

func slotFor(classType, field string) string {
	switch {
	case classType == "CLIPTextEncodeSDXLRefiner":
		return "refiner"
	case field == "text_g" || field == "text_l":
		return field
	default:
		return ""
	}
}
