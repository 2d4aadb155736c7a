// Package lint implements §6's `rask lint <file> [--rule pat]
// [--exclude pat]`: a registry of independently pluggable rules
// dispatched by glob pattern over their IDs, generalized from the
// teacher's contract-dispatch shape (providers/base/provider.go's
// Provider wrapping a LanguageConfig and forwarding calls to it) into
// a registry wrapping named Rule implementations and forwarding one
// AST walk to each enabled one.
//
// Rule bodies beyond the two built-ins below are intentionally out of
// scope (see DESIGN.md); what this package guarantees is the dispatch
// mechanism itself: pattern-based enable/exclude, one diagnostic
// stream merged across every rule that ran.
package lint

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
)

// Rule is one independently pluggable lint check. Doc is shown by
// `rask explain <rule-id>`-style help text; Check walks file and
// reports whatever it finds as diagnostics (Severity Warning unless
// the rule judges otherwise).
type Rule interface {
	ID() string
	Doc() string
	Check(file *ast.File) []diag.Diagnostic
}

// Registry holds every registered Rule, keyed by ID. The zero value is
// ready to use; DefaultRegistry is pre-populated with the built-in
// rules from rules.go.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds r, overwriting any rule previously registered under
// the same ID.
func (reg *Registry) Register(r Rule) {
	reg.rules[r.ID()] = r
}

// Names returns every registered rule ID, unordered.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.rules))
	for id := range reg.rules {
		names = append(names, id)
	}
	return names
}

// Lookup returns the rule registered under id, if any.
func (reg *Registry) Lookup(id string) (Rule, bool) {
	r, ok := reg.rules[id]
	return r, ok
}

// Run checks file against every rule whose ID matches at least one of
// includePatterns (all rules, if includePatterns is empty) and none of
// excludePatterns, merging every matched rule's diagnostics into one
// slice. Rules are held in a map, so the order of the rules' groups of
// diagnostics in the result is not defined. Pattern matching uses doublestar so a rule group
// like "style.*" can be included or excluded as one unit.
func (reg *Registry) Run(file *ast.File, includePatterns, excludePatterns []string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for id, r := range reg.rules {
		if !matchesAny(id, includePatterns, true) {
			continue
		}
		if matchesAny(id, excludePatterns, false) {
			continue
		}
		out = append(out, r.Check(file)...)
	}
	return out
}

// matchesAny reports whether id matches any of patterns. An empty
// pattern list matches everything when def is true (the "no --rule
// flag means run every rule" default) and nothing when def is false
// (the "no --exclude flag means exclude nothing" default).
func matchesAny(id string, patterns []string, def bool) bool {
	if len(patterns) == 0 {
		return def
	}
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, id); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultRegistry is the registry `cmd/rask`'s `lint` subcommand
// dispatches through, pre-populated with every built-in rule.
var DefaultRegistry = buildDefaultRegistry()

func buildDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(unusedImportRule{})
	reg.Register(emptyBlockRule{})
	return reg
}
