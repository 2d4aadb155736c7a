package registry

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// LockfileVersion is the current `lockfile-version` written to and
// required of every rask.lock file (§6).
const LockfileVersion = 1

// LockedPackage is one `[[package]]` block of a lock file.
type LockedPackage struct {
	Name         string
	Version      string
	Source       string // "registry+URL" or "path+RELATIVE"
	Checksum     string // "sha256:HEX"
	Capabilities []string
}

// Lockfile is the full deterministic contents of a rask.lock file.
type Lockfile struct {
	Version  int
	Packages []LockedPackage
}

// Sorted returns a copy of lf with packages sorted by name, as §6
// requires for a deterministic file.
func (lf Lockfile) Sorted() Lockfile {
	out := Lockfile{Version: lf.Version, Packages: append([]LockedPackage(nil), lf.Packages...)}
	sort.Slice(out.Packages, func(i, j int) bool { return out.Packages[i].Name < out.Packages[j].Name })
	return out
}

// WriteLockfile writes lf to path in the deterministic TOML-like
// format specified in §6.
func WriteLockfile(path string, lf Lockfile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("registry: creating lock file %s: %w", path, err)
	}
	defer f.Close()

	sorted := lf.Sorted()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "lockfile-version = %d\n", sorted.Version)
	for _, p := range sorted.Packages {
		fmt.Fprintf(w, "\n[[package]]\n")
		fmt.Fprintf(w, "name = %q\n", p.Name)
		fmt.Fprintf(w, "version = %q\n", p.Version)
		fmt.Fprintf(w, "source = %q\n", p.Source)
		fmt.Fprintf(w, "checksum = %q\n", p.Checksum)
		if len(p.Capabilities) > 0 {
			fmt.Fprintf(w, "capabilities = [%s]\n", quoteList(p.Capabilities))
		}
	}
	return w.Flush()
}

func quoteList(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = strconv.Quote(s)
	}
	return strings.Join(parts, ", ")
}

// ReadLockfile parses a rask.lock file, tolerating blank lines and
// `#`-prefixed comments as §6 requires.
func ReadLockfile(path string) (Lockfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Lockfile{}, fmt.Errorf("registry: opening lock file %s: %w", path, err)
	}
	defer f.Close()

	var lf Lockfile
	var cur *LockedPackage
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "[[package]]" {
			if cur != nil {
				lf.Packages = append(lf.Packages, *cur)
			}
			cur = &LockedPackage{}
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return Lockfile{}, fmt.Errorf("registry: %s:%d: malformed line %q", path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "lockfile-version":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Lockfile{}, fmt.Errorf("registry: %s:%d: bad lockfile-version %q", path, lineNo, val)
			}
			lf.Version = n
		case "name":
			cur.Name = unquote(val)
		case "version":
			cur.Version = unquote(val)
		case "source":
			cur.Source = unquote(val)
		case "checksum":
			cur.Checksum = unquote(val)
		case "capabilities":
			cur.Capabilities = parseStringList(val)
		}
	}
	if cur != nil {
		lf.Packages = append(lf.Packages, *cur)
	}
	if err := sc.Err(); err != nil {
		return Lockfile{}, fmt.Errorf("registry: reading lock file %s: %w", path, err)
	}
	return lf, nil
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}

func parseStringList(s string) []string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		out = append(out, unquote(strings.TrimSpace(part)))
	}
	return out
}

// ChecksumDir hashes the files named by relFiles, in sorted order and
// relative to dir (relative path + contents,
// so the checksum reproduces across machines regardless of absolute
// path) into one SHA-256 digest, formatted as "sha256:HEX" (§6).
func ChecksumDir(dir string, relFiles []string) (string, error) {
	sorted := append([]string(nil), relFiles...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, rel := range sorted {
		io.WriteString(h, rel)
		h.Write([]byte{0})
		f, err := os.Open(dir + "/" + rel)
		if err != nil {
			return "", fmt.Errorf("registry: checksumming %s: %w", rel, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("registry: checksumming %s: %w", rel, err)
		}
		h.Write([]byte{0})
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum recomputes a package's checksum and compares it
// against the locked value. A mismatch is a hard error per §4.4 with
// guidance to re-resolve.
func VerifyChecksum(dir string, relFiles []string, locked LockedPackage) error {
	got, err := ChecksumDir(dir, relFiles)
	if err != nil {
		return err
	}
	if got != locked.Checksum {
		return fmt.Errorf("registry: package %q checksum mismatch (locked %s, computed %s); re-run dependency resolution", locked.Name, locked.Checksum, got)
	}
	return nil
}
