package formdef

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id stamped on the definition schema.
const SchemaID = "https://github.com/goliatone/go-formstate/formdef.schema.json"

// Schema reflects the JSON Schema of the definition format, for editors and
// linters that check definition files.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(Definition))
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "go-formstate form definition"
	return s
}

// SchemaJSON returns Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("formdef: marshal schema: %w", err)
	}
	return data, nil
}
