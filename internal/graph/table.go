package graph

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// table holds the known node classes, loaded from the embedded
// nodes.yaml so the set can grow without touching traversal code.
type table struct {
	Samplers    []string            `yaml:"samplers"`
	Encoders    map[string][]string `yaml:"encoders"`
	Passthrough []string            `yaml:"passthrough"`
}

func (t *table) sampler(classType string) bool {
	return slices.Contains(t.Samplers, classType)
}

func (t *table) passthrough(classType string) bool {
	return slices.Contains(t.Passthrough, classType)
}

var nodeTable = loadTable()

func loadTable() *table {
	var t table
	if err := yaml.Unmarshal(nodesYAML, &t); err != nil {
		// The table ships inside the binary; failing to parse it is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("graph: invalid embedded nodes.yaml: %v", err))
	}
	return &t
}
