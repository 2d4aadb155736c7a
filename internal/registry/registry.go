package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rask-lang/rask-sub001/internal/semver"
)

// Package is one resolved package: its manifest, the project-relative
// directory it lives under, and its source files.
type Package struct {
	Manifest *Manifest
	Dir      string // relative to the project root; "" for the root package
	Files    []string

	// Capabilities is the union of the package's own declared
	// capabilities and every transitive dependency's, computed by
	// UnionCapabilities (§4.4a).
	Capabilities []Capability
}

// Registry is a thread-safe, name-keyed collection of packages
// discovered under one project root, generalized from the teacher's
// provider registry (name/alias/extension lookup) into a package
// registry (name/version lookup).
type Registry struct {
	mu       sync.RWMutex
	root     string
	packages map[string]*Package // name -> package
}

// NewRegistry creates an empty registry rooted at root.
func NewRegistry(root string) *Registry {
	return &Registry{root: root, packages: make(map[string]*Package)}
}

// Root returns the project root this registry was built from.
func (r *Registry) Root() string { return r.root }

// Register adds a package to the registry. It is an error to register
// the same package name twice.
func (r *Registry) Register(p *Package) error {
	if p == nil || p.Manifest == nil || p.Manifest.Name == "" {
		return fmt.Errorf("registry: cannot register a package without a manifest name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.packages[p.Manifest.Name]; exists {
		return fmt.Errorf("registry: package %q already registered", p.Manifest.Name)
	}
	r.packages[p.Manifest.Name] = p
	return nil
}

// Get retrieves a package by name.
func (r *Registry) Get(name string) (*Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.packages[name]
	if !ok {
		return nil, fmt.Errorf("registry: no package named %q", name)
	}
	return p, nil
}

// Names returns every registered package name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.packages))
	for n := range r.packages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every registered package, sorted by name.
func (r *Registry) All() []*Package {
	names := r.Names()
	out := make([]*Package, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, n := range names {
		out[i] = r.packages[n]
	}
	return out
}

// Load discovers every .rk file under root grouped by directory, and
// registers the root package plus one package per subdirectory that
// contains sources. It does not itself resolve dependency manifests
// of external registries; that is ResolveVersion's job.
func Load(root string) (*Registry, error) {
	manifestPath := root + "/build.rk"
	rootManifest, err := ParseManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	files, err := DiscoverSources(root)
	if err != nil {
		return nil, err
	}

	byDir := map[string][]string{}
	for _, f := range files {
		byDir[PackageOf(root, f)] = append(byDir[PackageOf(root, f)], f)
	}

	reg := NewRegistry(root)
	if err := reg.Register(&Package{Manifest: rootManifest, Dir: "", Files: byDir[""]}); err != nil {
		return nil, err
	}
	for dir, fs := range byDir {
		if dir == "" {
			continue
		}
		sort.Strings(fs)
		if err := reg.Register(&Package{
			Manifest: &Manifest{Name: dir, Dependencies: map[string]string{}},
			Dir:      dir,
			Files:    fs,
		}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// UnionCapabilities computes, for every package in the registry, the
// union of its own declared capabilities with every transitive
// dependency's declared capabilities (§4.4a). Dependency names are
// resolved through the registry itself; a dependency not found in the
// registry is silently skipped (external/unresolved dependencies are
// handled by the resolver, which records capabilities straight from
// the lock file once resolution succeeds).
func (r *Registry) UnionCapabilities() {
	r.mu.Lock()
	defer r.mu.Unlock()
	memo := map[string][]Capability{}
	var visit func(name string, seen map[string]bool) []Capability
	visit = func(name string, seen map[string]bool) []Capability {
		if caps, ok := memo[name]; ok {
			return caps
		}
		if seen[name] {
			return nil // dependency cycle guard
		}
		seen[name] = true
		p, ok := r.packages[name]
		if !ok {
			return nil
		}
		set := map[Capability]bool{}
		for _, c := range p.Manifest.Capabilities {
			set[c] = true
		}
		for dep := range p.Manifest.Dependencies {
			for _, c := range visit(dep, seen) {
				set[c] = true
			}
		}
		caps := make([]Capability, 0, len(set))
		for c := range set {
			caps = append(caps, c)
		}
		sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
		memo[name] = caps
		return caps
	}
	for name, p := range r.packages {
		p.Capabilities = visit(name, map[string]bool{})
	}
}

// ResolveVersion picks the version of dep that satisfies every
// constraint string accumulated for it, out of the versions a
// registry source offers (§4.4). Callers building a lock file call
// this once per dependency with the full constraint set gathered
// across the dependency graph.
func ResolveVersion(dep string, available []semver.Version, constraintStrs []string) (semver.Version, error) {
	cs := make([]semver.Constraint, 0, len(constraintStrs))
	for _, s := range constraintStrs {
		c, err := semver.ParseConstraint(s)
		if err != nil {
			return semver.Version{}, fmt.Errorf("registry: dependency %q: %w", dep, err)
		}
		cs = append(cs, c)
	}
	v, err := semver.Resolve(available, cs)
	if err != nil {
		return semver.Version{}, fmt.Errorf("registry: dependency %q: no version satisfies constraints %v", dep, constraintStrs)
	}
	return v, nil
}
