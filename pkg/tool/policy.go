package tool

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Policy decides which tools belong to the active set. Without Rego files
// the built-in rule applies: mutating tools are denied in read-only
// contexts, everything else is allowed.
type Policy struct {
	query    *rego.PreparedEvalQuery
	readOnly bool
}

// NewPolicy loads all .rego files from policyDir and prepares the
// data.tools.allow query. An empty policyDir (or a dir without .rego
// files) yields the built-in policy only.
func NewPolicy(ctx context.Context, policyDir string, readOnly bool) (*Policy, error) {
	p := &Policy{readOnly: readOnly}

	if policyDir == "" {
		return p, nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", policyDir))
	}
	if len(files) == 0 {
		return p, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.tools.allow"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	query, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare tool policy query")
	}

	p.query = &query
	return p, nil
}

// Allow reports whether the tool may be part of the active set
func (p *Policy) Allow(ctx context.Context, kind Kind) bool {
	if p.readOnly && kind.Mutating() {
		return false
	}

	if p.query == nil {
		return true
	}

	results, err := p.query.Eval(ctx, rego.EvalInput(map[string]any{
		"tool":      string(kind),
		"mutating":  kind.Mutating(),
		"read_only": p.readOnly,
	}))
	if err != nil {
		logging.From(ctx).Warn("tool policy evaluation failed, denying tool",
			"tool", kind, "error", err)
		return false
	}

	// Undefined result means the policy does not grant the tool
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	return ok && allowed
}
