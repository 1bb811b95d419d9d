package schemaregistry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/drylab/drylab/internal/types"
)

// compileJSONSchema loads a NAME.vVERSION.json document and compiles it with
// santhosh-tekuri/jsonschema, the same library
// _examples/axonops-axonops-schema-registry uses for exactly this purpose.
// The document may declare a top-level "payload_encoding": "utf-8" key,
// which is read here and left in the document that is compiled (JSON
// Schema ignores unknown keywords, so it does not affect validation).
func compileJSONSchema(id types.SchemaId, path string) (*compiledSchema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: CodeUnknownSchema, SchemaID: id, Message: fmt.Sprintf("reading %s: %v", path, err), Err: err}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Code: CodeUnknownSchema, SchemaID: id, Message: fmt.Sprintf("parsing %s: %v", path, err), Err: err}
	}
	encoding, _ := doc["payload_encoding"].(string)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	url := "schema://" + string(id)
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, &Error{Code: CodeUnknownSchema, SchemaID: id, Message: fmt.Sprintf("registering %s: %v", path, err), Err: err}
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, &Error{Code: CodeUnknownSchema, SchemaID: id, Message: fmt.Sprintf("compiling %s: %v", path, err), Err: err}
	}

	return &compiledSchema{
		encoding: encoding,
		decode: func(b []byte) (any, error) {
			return jsonschema.UnmarshalJSON(bytes.NewReader(b))
		},
		validate: func(v any) error {
			return compiled.Validate(v)
		},
	}, nil
}
