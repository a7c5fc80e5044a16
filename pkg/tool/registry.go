package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Registry holds the active tool set for one execution context. Tools
// denied by policy are absent, not merely flagged: a call to an inactive
// tool fails the same way as a call to an unknown tool.
type Registry struct {
	active map[Kind]Spec
}

// NewRegistry builds the active tool set by filtering the built-in catalog
// through the policy
func NewRegistry(ctx context.Context, policy *Policy) *Registry {
	active := make(map[Kind]Spec)
	for _, spec := range builtinSpecs() {
		if policy == nil || policy.Allow(ctx, spec.Kind) {
			active[spec.Kind] = spec
		}
	}
	return &Registry{active: active}
}

// Lookup returns the spec for an active tool
func (r *Registry) Lookup(kind Kind) (Spec, bool) {
	spec, ok := r.active[kind]
	return spec, ok
}

// Active returns the active specs sorted by tool name
func (r *Registry) Active() []Spec {
	specs := make([]Spec, 0, len(r.active))
	for _, spec := range r.active {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Kind < specs[j].Kind
	})
	return specs
}

// SelectionList renders the active tools as prompt lines for the tool
// selection model call
func (r *Registry) SelectionList() string {
	var lines []string
	for _, spec := range r.Active() {
		var params []string
		for name, ps := range spec.Params {
			if ps.Required {
				params = append(params, name)
			}
		}
		sort.Strings(params)

		line := fmt.Sprintf("- %s: %s", spec.Kind, spec.Description)
		if len(params) > 0 {
			line += fmt.Sprintf(" (parameter: %s)", strings.Join(params, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
