package toolserver

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/streamforge/agentcore/model"
)

// ValidateToolDefinitions compiles and self-checks each definition's
// InputSchema, returning only the definitions whose schema compiles. A
// definition with an invalid schema is dropped from the prompt's
// capability-mapping section rather than failing the whole call; dropped
// names are returned alongside their error so the caller can log them.
func ValidateToolDefinitions(defs []model.ToolDefinition) (valid []model.ToolDefinition, dropped map[string]error) {
	dropped = make(map[string]error)
	for _, def := range defs {
		if err := validateSchema(def.InputSchema); err != nil {
			dropped[def.Name] = err
			continue
		}
		valid = append(valid, def)
	}
	return valid, dropped
}

func validateSchema(schemaDoc map[string]any) error {
	if len(schemaDoc) == 0 {
		return nil
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	if _, err := c.Compile("schema.json"); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return nil
}
