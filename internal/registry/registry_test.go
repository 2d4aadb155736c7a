package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/registry"
	"github.com/rask-lang/rask-sub001/internal/semver"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestParseManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "build.rk")
	writeFile(t, manifest, `
[package]
name = "demo"
version = "0.1.0"

[dependencies]
http = "^1.2.0"
json = "~0.3.1"

[capabilities]
net = true
read = true

func build(ctx: BuildContext) {
	ctx.warning("not parsed by ParseManifest")
}
`)
	m, err := registry.ParseManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Name)
	assert.Equal(t, "0.1.0", m.Version)
	assert.Equal(t, "^1.2.0", m.Dependencies["http"])
	assert.Equal(t, "~0.3.1", m.Dependencies["json"])
	assert.Equal(t, []registry.Capability{registry.CapNet, registry.CapRead}, m.Capabilities)
}

func TestParseManifestRequiresName(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "build.rk")
	writeFile(t, manifest, "[package]\nversion = \"0.1.0\"\n")
	_, err := registry.ParseManifest(manifest)
	assert.Error(t, err)
}

func TestDiscoverSourcesExcludesVendorAndBuild(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build.rk"), "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(dir, "src", "main.rk"), "")
	writeFile(t, filepath.Join(dir, "src", "util.rk"), "")
	writeFile(t, filepath.Join(dir, "vendor", "lib.rk"), "")
	writeFile(t, filepath.Join(dir, "build", "out.rk"), "")

	files, err := registry.DiscoverSources(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Contains(t, f, "src")
	}
}

func TestFindProjectRootWalksAncestors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build.rk"), "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n")
	nested := filepath.Join(root, "src", "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := registry.FindProjectRoot(nested)
	require.NoError(t, err)
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedFound, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, resolvedRoot, resolvedFound)
}

func TestLoadRegistersRootAndSubPackages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build.rk"), "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "main.rk"), "")
	writeFile(t, filepath.Join(root, "util", "helpers.rk"), "")

	reg, err := registry.Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "util"}, reg.Names())

	demo, err := reg.Get("demo")
	require.NoError(t, err)
	assert.Len(t, demo.Files, 1)
}

func TestUnionCapabilities(t *testing.T) {
	reg := registry.NewRegistry("/fake")
	require.NoError(t, reg.Register(&registry.Package{Manifest: &registry.Manifest{
		Name:         "root",
		Dependencies: map[string]string{"net_lib": "^1.0.0"},
		Capabilities: []registry.Capability{registry.CapRead},
	}}))
	require.NoError(t, reg.Register(&registry.Package{Manifest: &registry.Manifest{
		Name:         "net_lib",
		Dependencies: map[string]string{},
		Capabilities: []registry.Capability{registry.CapNet},
	}}))

	reg.UnionCapabilities()

	root, err := reg.Get("root")
	require.NoError(t, err)
	assert.Equal(t, []registry.Capability{registry.CapNet, registry.CapRead}, root.Capabilities)
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rask.lock")
	lf := registry.Lockfile{
		Version: registry.LockfileVersion,
		Packages: []registry.LockedPackage{
			{Name: "zeta", Version: "2.0.0", Source: "registry+https://pkgs.rask-lang.org", Checksum: "sha256:ab"},
			{Name: "alpha", Version: "1.0.0", Source: "registry+https://pkgs.rask-lang.org", Checksum: "sha256:cd", Capabilities: []string{"net", "read"}},
		},
	}
	require.NoError(t, registry.WriteLockfile(path, lf))

	got, err := registry.ReadLockfile(path)
	require.NoError(t, err)
	require.Len(t, got.Packages, 2)
	assert.Equal(t, "alpha", got.Packages[0].Name, "packages must be sorted by name")
	assert.Equal(t, "zeta", got.Packages[1].Name)
	assert.Equal(t, []string{"net", "read"}, got.Packages[0].Capabilities)
}

func TestChecksumDirIsDeterministicAndDetectsChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rk"), "content a")
	writeFile(t, filepath.Join(dir, "b.rk"), "content b")

	sum1, err := registry.ChecksumDir(dir, []string{"a.rk", "b.rk"})
	require.NoError(t, err)
	sum2, err := registry.ChecksumDir(dir, []string{"b.rk", "a.rk"})
	require.NoError(t, err)
	assert.Equal(t, sum1, sum2, "checksum must not depend on input file order")

	writeFile(t, filepath.Join(dir, "a.rk"), "content a changed")
	sum3, err := registry.ChecksumDir(dir, []string{"a.rk", "b.rk"})
	require.NoError(t, err)
	assert.NotEqual(t, sum1, sum3)
}

func TestVerifyChecksumMismatchIsHardError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rk"), "content a")

	sum, err := registry.ChecksumDir(dir, []string{"a.rk"})
	require.NoError(t, err)

	err = registry.VerifyChecksum(dir, []string{"a.rk"}, registry.LockedPackage{Name: "pkg", Checksum: sum})
	assert.NoError(t, err)

	writeFile(t, filepath.Join(dir, "a.rk"), "tampered")
	err = registry.VerifyChecksum(dir, []string{"a.rk"}, registry.LockedPackage{Name: "pkg", Checksum: sum})
	assert.Error(t, err)
}

func TestResolveVersionPicksMaxSatisfying(t *testing.T) {
	raw := []string{"1.0.0", "1.2.3", "1.5.0", "2.0.0"}
	versions := make([]semver.Version, len(raw))
	for i, s := range raw {
		v, err := semver.ParseVersion(s)
		require.NoError(t, err)
		versions[i] = v
	}
	v, err := registry.ResolveVersion("http", versions, []string{"^1.2.0"})
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", v.String())
}
