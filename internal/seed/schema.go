package seed

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// SchemaError is a schema violation with its position in the document.
type SchemaError struct {
	Path    string
	Message string
	Pos     token.Pos
}

// Error includes the path; CUE already prefixes it to the message.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("seed schema: %s", e.Message)
}

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// compiledSchema builds the #Document definition once per process.
// A cue.Context is not safe for concurrent use, so Validate serializes on
// schemaMu.
func compiledSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile seed schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Document"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Document: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

var schemaMu sync.Mutex

// Validate checks a JSON seed document against the CUE schema.
func Validate(doc []byte) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, def, err := compiledSchema()
	if err != nil {
		return err
	}

	v := ctx.CompileBytes(doc, cue.Filename("seed.json"))
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError reduces a CUE error list to its first entry.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Message: err.Error()}
	}

	first := errs[0]
	se := &SchemaError{Message: first.Error()}
	se.Path = strings.Join(first.Path(), ".")
	if positions := errors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	return se
}
