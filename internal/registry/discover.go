package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FindProjectRoot walks ancestors of dir looking for the outermost
// directory containing a build.rk manifest, stopping at a .git
// boundary or the filesystem root (§4.4).
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("registry: resolving %s: %w", dir, err)
	}

	outermost := ""
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "build.rk")); err == nil {
			outermost = cur
		}
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	if outermost == "" {
		return "", fmt.Errorf("registry: no build.rk manifest found above %s", dir)
	}
	return outermost, nil
}

// excludedDirs are never descended into during source discovery.
var excludedDirs = map[string]bool{"build": true, "vendor": true, ".git": true}

// DiscoverSources enumerates every `.rk` file under root, excluding
// build.rk itself and the build/ and vendor/ directories (§4.4).
func DiscoverSources(root string) ([]string, error) {
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, "**/*.rk")
	if err != nil {
		return nil, fmt.Errorf("registry: globbing %s: %w", root, err)
	}

	var out []string
	for _, m := range matches {
		if filepath.Base(m) == "build.rk" && !strings.Contains(m, string(filepath.Separator)) {
			continue
		}
		if inExcludedDir(m) {
			continue
		}
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

func inExcludedDir(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if excludedDirs[part] {
			return true
		}
	}
	return false
}

// PackageOf groups a source file into a package by directory
// convention: every .rk file in the same directory belongs to the
// same package, named after that directory. Files directly under root
// get the empty name; Load registers that group under the root
// manifest's name.
func PackageOf(root, file string) string {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
