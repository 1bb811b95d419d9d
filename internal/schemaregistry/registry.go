package schemaregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/drylab/drylab/internal/types"
)

// compiledSchema is a resolved, cached validator plus its input-decoding
// strategy. encoding is the schema document's declared payload_encoding
// ("" or "utf-8"); decode turns a raw blob into the value the validator
// expects when encoding is not "utf-8" (for "utf-8" the registry always
// hands the validator a normalized string, regardless of backend).
type compiledSchema struct {
	encoding string
	decode   func([]byte) (any, error)
	validate func(any) error
}

// Registry loads, caches, and applies validators keyed by SchemaId. It
// implements the single-method Validator contract the ledger package
// declares, so the ledger has no compile-time dependency on either JSON
// Schema or CUE internals.
type Registry struct {
	dir string

	mu    sync.RWMutex
	cache map[types.SchemaId]*compiledSchema
}

// New creates a Registry that resolves schema documents from dir. Schemas
// are loaded lazily on first use and cached for the lifetime of the
// Registry.
func New(dir string) *Registry {
	return &Registry{
		dir:   dir,
		cache: make(map[types.SchemaId]*compiledSchema),
	}
}

// Validate implements the ledger.Validator contract: resolve schemaID to a
// compiled validator, decode blob per the document's declared encoding, and
// apply the validator. Returns nil on success, or an *Error with
// CodeUnknownSchema / CodeInvalidPayload on failure.
func (r *Registry) Validate(schemaID string, blob []byte) error {
	id, err := types.NormalizeSchemaId(schemaID)
	if err != nil {
		return &Error{Code: CodeUnknownSchema, Message: err.Error()}
	}

	cs, err := r.resolve(id)
	if err != nil {
		return err
	}

	var input any
	if cs.encoding == "utf-8" {
		if !utf8.Valid(blob) {
			return &Error{Code: CodeInvalidPayload, SchemaID: id, Message: "payload is not valid utf-8"}
		}
		input = norm.NFC.String(string(blob))
	} else {
		decoded, err := cs.decode(blob)
		if err != nil {
			return &Error{Code: CodeInvalidPayload, SchemaID: id, Message: "decoding payload: " + err.Error(), Err: err}
		}
		input = decoded
	}

	if err := cs.validate(input); err != nil {
		return &Error{Code: CodeInvalidPayload, SchemaID: id, Message: err.Error(), Err: err}
	}
	return nil
}

// resolve returns the cached compiled schema for id, compiling and caching
// it on first use. NAME.vVERSION.json is preferred; NAME.vVERSION.cue is
// used if no JSON document exists.
func (r *Registry) resolve(id types.SchemaId) (*compiledSchema, error) {
	r.mu.RLock()
	cs, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return cs, nil
	}

	name, version, err := id.NameVersion()
	if err != nil {
		return nil, &Error{Code: CodeUnknownSchema, Message: err.Error()}
	}

	base := fmt.Sprintf("%s.v%d", name, version)
	jsonPath := filepath.Join(r.dir, base+".json")
	cuePath := filepath.Join(r.dir, base+".cue")

	var compiled *compiledSchema
	switch {
	case fileExists(jsonPath):
		compiled, err = compileJSONSchema(id, jsonPath)
	case fileExists(cuePath):
		compiled, err = compileCUESchema(id, cuePath)
	default:
		return nil, &Error{Code: CodeUnknownSchema, SchemaID: id, Message: fmt.Sprintf("no schema document found for %s in %s", id, r.dir)}
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[id] = compiled
	r.mu.Unlock()
	return compiled, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
