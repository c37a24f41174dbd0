// Package schema checks the structure of a raw payload before it is decoded.
//
// Decoding is deliberately lenient (missing indices become NoIndex), so a
// payload with the wrong shape can load and quietly resolve to empty labels.
// Validate catches those shapes with a CUE schema (payload.cue) and reports
// every violation with its JSON path.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed payload.cue
var payloadSchema string

// Issue is one schema violation.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (i Issue) String() string {
	loc := i.Path
	if loc == "" {
		loc = "(root)"
	}
	if i.Line > 0 {
		return fmt.Sprintf("%s (line %d:%d): %s", loc, i.Line, i.Column, i.Message)
	}
	return fmt.Sprintf("%s: %s", loc, i.Message)
}

// Validator holds the compiled payload schema.
//
// Thread-safety: a Validator must not be shared between goroutines; the
// underlying CUE context is not safe for concurrent use.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(payloadSchema, cue.Filename("payload.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Payload"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Payload: %w", err)
	}
	return &Validator{ctx: ctx, schema: def}, nil
}

// Validate checks data, a JSON payload, against the schema. It returns nil
// when the payload conforms.
func (v *Validator) Validate(data []byte) []Issue {
	expr, err := cuejson.Extract("payload.json", data)
	if err != nil {
		return issuesFrom(err)
	}

	value := v.ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return issuesFrom(err)
	}

	unified := v.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return issuesFrom(err)
	}
	return nil
}

func issuesFrom(err error) []Issue {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []Issue{{Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(errs))
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		issue := Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == "payload.json" {
				issue.Line = pos.Line()
				issue.Column = pos.Column()
				break
			}
		}
		key := issue.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		issues = append(issues, issue)
	}
	return issues
}
