package agent

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// validateArguments checks model-supplied tool arguments against the tool's
// declared input schema. The model is an uncontrolled collaborator, so
// arguments are never trusted to match the schema.
func validateArguments(tool ToolDescriptor, args map[string]interface{}) error {
	if len(tool.InputSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(tool.InputSchema)
	docLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed for tool %s: %w", tool.Name, err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("invalid arguments for tool %s: %s", tool.Name, strings.Join(problems, "; "))
	}

	return nil
}
