package toolserver

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/streamforge/agentcore/model"
)

// toolingSpecDocument is the shape a bulk YAML tooling-spec document takes
// (`tools: [{type, prefix, command, args, env, cwd, url, headers}]`),
// mirroring per-node YAML tool configs.
type toolingSpecDocument struct {
	Tools []model.ToolingSpec `yaml:"tools"`
}

// LoadYAML decodes a bulk tooling-spec document. It is an alternate input
// path into Build: the returned specs carry the same semantics (naming,
// env interpolation, collision handling) as specs built up programmatically.
func LoadYAML(data []byte) ([]model.ToolingSpec, error) {
	var doc toolingSpecDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode tooling spec document: %w", err)
	}
	return doc.Tools, nil
}
