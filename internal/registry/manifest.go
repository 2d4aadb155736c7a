// Package registry implements §4.4's package discovery and manifest
// model, generalized from the teacher's thread-safe, alias-aware
// provider registry (`internal/registry/registry.go`) into a registry
// of on-disk packages keyed by name instead of a registry of language
// providers keyed by language.
package registry

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Capability names a privileged operation a package may perform,
// per §4.4a.
type Capability string

const (
	CapNet  Capability = "net"
	CapRead Capability = "read"
	CapWrite Capability = "write"
	CapExec Capability = "exec"
	CapFFI  Capability = "ffi"
)

// Manifest is the parsed contents of a `build.rk` manifest's
// declarative header: name, version, dependency constraints, and
// declared capabilities. (The manifest's `func build(ctx)` body is
// interpreted, not parsed here — see internal/interp.)
type Manifest struct {
	Name         string
	Version      string
	Dependencies map[string]string // package name -> constraint string
	Capabilities []Capability
}

// ParseManifest reads the declarative `[package]`/`[dependencies]`/
// `[capabilities]` header of a build.rk file. The interpreted
// `func build(ctx)` body, if present, is ignored here.
func ParseManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("registry: opening manifest %s: %w", path, err)
	}
	defer f.Close()

	m := &Manifest{Dependencies: map[string]string{}}
	section := ""
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")
			continue
		}
		if strings.HasPrefix(text, "func ") {
			break // interpreted body starts; declarative header is done
		}
		key, val, ok := strings.Cut(text, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(strings.Trim(strings.TrimSpace(val), `"`))
		switch section {
		case "package":
			switch key {
			case "name":
				m.Name = val
			case "version":
				m.Version = val
			}
		case "dependencies":
			m.Dependencies[key] = val
		case "capabilities":
			if b, err := strconv.ParseBool(val); err == nil && b {
				m.Capabilities = append(m.Capabilities, Capability(key))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("registry: reading manifest %s: %w", path, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("registry: manifest %s has no [package] name", path)
	}
	sort.Slice(m.Capabilities, func(i, j int) bool { return m.Capabilities[i] < m.Capabilities[j] })
	return m, nil
}
