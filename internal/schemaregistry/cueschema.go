package schemaregistry

import (
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/drylab/drylab/internal/types"
)

// compileCUESchema loads a NAME.vVERSION.cue document as a CUE constraint
// and returns a validator that unifies a decoded JSON instance against it.
// This is the additive backend spec.md §4.1 allows alongside JSON Schema,
// repurposing the CUE loading the teacher's internal/cli/loader.go performs
// for concept/sync specs into a single-value schema document loader.
//
// A cue schema document may declare a top-level payload_encoding field the
// same way a JSON Schema document does; it is read via Lookup before the
// constraint is used for validation so it never itself fails unification.
func compileCUESchema(id types.SchemaId, path string) (*compiledSchema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: CodeUnknownSchema, SchemaID: id, Message: fmt.Sprintf("reading %s: %v", path, err), Err: err}
	}

	ctx := cuecontext.New()
	constraint := ctx.CompileBytes(raw, cue.Filename(path))
	if err := constraint.Err(); err != nil {
		return nil, &Error{Code: CodeUnknownSchema, SchemaID: id, Message: fmt.Sprintf("compiling %s: %v", path, err), Err: err}
	}

	encoding := ""
	if encVal := constraint.LookupPath(cue.ParsePath("payload_encoding")); encVal.Exists() {
		if s, err := encVal.String(); err == nil {
			encoding = s
		}
	}

	return &compiledSchema{
		encoding: encoding,
		decode: func(b []byte) (any, error) {
			var v any
			if err := json.Unmarshal(b, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		validate: func(v any) error {
			instance := ctx.Encode(v)
			if err := instance.Err(); err != nil {
				return err
			}
			unified := constraint.Unify(instance)
			if err := unified.Err(); err != nil {
				return err
			}
			return unified.Validate(cue.Concrete(true))
		},
	}, nil
}
