// Package contracts holds the JSON schemas describing the API's response bodies.
package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema file names.
const (
	Student     = "student.schema.json"
	StudentList = "student_list.schema.json"
	Message     = "message.schema.json"
	Error       = "error.schema.json"
)

const baseURL = "https://university-api.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// Schema returns the compiled schema with the given file name.
func Schema(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(compileAll)
	if compileErr != nil {
		return nil, compileErr
	}

	schema, ok := compiled[name]
	if !ok {
		return nil, fmt.Errorf("unknown contract %q", name)
	}
	return schema, nil
}

// Validate checks a raw JSON document against the named schema.
func Validate(name string, payload []byte) error {
	schema, err := Schema(name)
	if err != nil {
		return err
	}

	var document interface{}
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	return schema.Validate(document)
}

func compileAll() {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		compileErr = err
		return
	}

	compiler := jsonschema.NewCompiler()
	for _, entry := range entries {
		data, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			compileErr = err
			return
		}
		if err := compiler.AddResource(baseURL+entry.Name(), bytes.NewReader(data)); err != nil {
			compileErr = fmt.Errorf("add schema %s: %w", entry.Name(), err)
			return
		}
	}

	compiled = make(map[string]*jsonschema.Schema, len(entries))
	for _, entry := range entries {
		schema, err := compiler.Compile(baseURL + entry.Name())
		if err != nil {
			compileErr = fmt.Errorf("compile schema %s: %w", entry.Name(), err)
			return
		}
		compiled[entry.Name()] = schema
	}
}
