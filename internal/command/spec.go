package command

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/docsift/docsift/internal/common"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Spec is one extraction command: prompt text plus the JSON Schema the
// result must conform to. Loaded fresh from disk on every request.
type Spec struct {
	Name       string
	Model      string
	System     string
	UserPrompt string
	SchemaName string
	Schema     json.RawMessage

	// Compiled is set when Schema is present; used to check the
	// service's output shape.
	Compiled *jsonschema.Schema
}

// specFile is the on-disk JSON shape. schema_name and schemaName are
// both accepted.
type specFile struct {
	Name          string          `json:"name"`
	Model         string          `json:"model"`
	System        string          `json:"system"`
	UserPrompt    string          `json:"user_prompt"`
	SchemaName    string          `json:"schema_name"`
	SchemaNameAlt string          `json:"schemaName"`
	Schema        json.RawMessage `json:"schema"`
}

const defaultUserPrompt = "Extract the requested information from the attached document."

func parseSpec(base string, data []byte) (*Spec, error) {
	var f specFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, common.InvalidSpecError("parse command spec "+base, err)
	}

	schemaName := f.SchemaName
	if schemaName == "" {
		schemaName = f.SchemaNameAlt
	}
	schema := f.Schema
	if string(schema) == "null" {
		schema = nil
	}
	if schemaName == "" && len(schema) == 0 {
		return nil, common.InvalidSpecError(base+" declares neither schema_name nor schema", nil)
	}

	s := &Spec{
		Name:       f.Name,
		Model:      f.Model,
		System:     f.System,
		UserPrompt: f.UserPrompt,
		SchemaName: schemaName,
		Schema:     schema,
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if s.UserPrompt == "" {
		s.UserPrompt = defaultUserPrompt
	}

	if len(schema) > 0 {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(base, bytes.NewReader(schema)); err != nil {
			return nil, common.InvalidSpecError(base+" has an invalid schema", err)
		}
		compiled, err := compiler.Compile(base)
		if err != nil {
			return nil, common.InvalidSpecError(base+" has an invalid schema", err)
		}
		s.Compiled = compiled
	}
	return s, nil
}
