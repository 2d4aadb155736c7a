package semver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/semver"
)

func mustParse(t *testing.T, s string) semver.Version {
	t.Helper()
	v, err := semver.ParseVersion(s)
	require.NoError(t, err)
	return v
}

func TestParseVersionRejectsMalformed(t *testing.T) {
	for _, s := range []string{"1.2", "1.2.x", "1.2.3.4", "a.b.c"} {
		_, err := semver.ParseVersion(s)
		assert.Error(t, err, s)
	}
}

func TestParseVersionWithPrerelease(t *testing.T) {
	v := mustParse(t, "1.2.3-rc1")
	assert.Equal(t, semver.Version{Major: 1, Minor: 2, Patch: 3, Pre: "rc1"}, v)
}

func TestCompareNumericOrdering(t *testing.T) {
	assert.Equal(t, -1, semver.Compare(mustParse(t, "1.0.0"), mustParse(t, "1.0.1")))
	assert.Equal(t, -1, semver.Compare(mustParse(t, "1.2.0"), mustParse(t, "1.3.0")))
	assert.Equal(t, -1, semver.Compare(mustParse(t, "1.0.0"), mustParse(t, "2.0.0")))
	assert.Equal(t, 0, semver.Compare(mustParse(t, "1.2.3"), mustParse(t, "1.2.3")))
	assert.Equal(t, 1, semver.Compare(mustParse(t, "2.0.0"), mustParse(t, "1.9.9")))
}

func TestComparePrereleaseSortsBeforeRelease(t *testing.T) {
	assert.Equal(t, -1, semver.Compare(mustParse(t, "1.0.0-rc1"), mustParse(t, "1.0.0")))
	assert.Equal(t, 1, semver.Compare(mustParse(t, "1.0.0"), mustParse(t, "1.0.0-rc1")))
	assert.Equal(t, -1, semver.Compare(mustParse(t, "1.0.0-rc1"), mustParse(t, "1.0.0-rc2")))
}

func TestParseConstraintOperators(t *testing.T) {
	cases := []struct {
		in   string
		op   semver.Op
		want semver.Version
	}{
		{"^1.2.3", semver.OpCompatible, semver.Version{Major: 1, Minor: 2, Patch: 3}},
		{"~1.2.3", semver.OpTilde, semver.Version{Major: 1, Minor: 2, Patch: 3}},
		{"=1.2.3", semver.OpExact, semver.Version{Major: 1, Minor: 2, Patch: 3}},
		{">=1.2.3", semver.OpGTE, semver.Version{Major: 1, Minor: 2, Patch: 3}},
	}
	for _, c := range cases {
		got, err := semver.ParseConstraint(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.op, got.Op, c.in)
		assert.Equal(t, c.want, got.Version, c.in)
	}

	star, err := semver.ParseConstraint("*")
	require.NoError(t, err)
	assert.Equal(t, semver.OpAny, star.Op)
}

func TestParseConstraintBareVersionDefaults(t *testing.T) {
	zerox, err := semver.ParseConstraint("0.3.1")
	require.NoError(t, err)
	assert.Equal(t, semver.OpTilde, zerox.Op)

	onex, err := semver.ParseConstraint("1.4.0")
	require.NoError(t, err)
	assert.Equal(t, semver.OpCompatible, onex.Op)
}

func TestSatisfiesCompatible(t *testing.T) {
	c, err := semver.ParseConstraint("^1.2.3")
	require.NoError(t, err)
	assert.True(t, semver.Satisfies(mustParse(t, "1.2.3"), c))
	assert.True(t, semver.Satisfies(mustParse(t, "1.9.0"), c))
	assert.False(t, semver.Satisfies(mustParse(t, "2.0.0"), c))
	assert.False(t, semver.Satisfies(mustParse(t, "1.2.2"), c))
}

func TestSatisfiesCompatibleZeroMajor(t *testing.T) {
	c, err := semver.ParseConstraint("^0.3.1")
	require.NoError(t, err)
	assert.True(t, semver.Satisfies(mustParse(t, "0.3.5"), c))
	assert.False(t, semver.Satisfies(mustParse(t, "0.4.0"), c))
	assert.False(t, semver.Satisfies(mustParse(t, "1.0.0"), c))
}

func TestSatisfiesTilde(t *testing.T) {
	c, err := semver.ParseConstraint("~1.2.3")
	require.NoError(t, err)
	assert.True(t, semver.Satisfies(mustParse(t, "1.2.9"), c))
	assert.False(t, semver.Satisfies(mustParse(t, "1.3.0"), c))
	assert.False(t, semver.Satisfies(mustParse(t, "1.2.2"), c))
}

func TestSatisfiesExactAndGTE(t *testing.T) {
	exact, _ := semver.ParseConstraint("=1.2.3")
	assert.True(t, semver.Satisfies(mustParse(t, "1.2.3"), exact))
	assert.False(t, semver.Satisfies(mustParse(t, "1.2.4"), exact))

	gte, _ := semver.ParseConstraint(">=1.2.3")
	assert.True(t, semver.Satisfies(mustParse(t, "1.2.3"), gte))
	assert.True(t, semver.Satisfies(mustParse(t, "5.0.0"), gte))
	assert.False(t, semver.Satisfies(mustParse(t, "1.2.2"), gte))
}

func TestResolvePicksMaxSatisfying(t *testing.T) {
	candidates := []semver.Version{
		mustParse(t, "1.0.0"),
		mustParse(t, "1.2.3"),
		mustParse(t, "1.5.0"),
		mustParse(t, "2.0.0"),
	}
	c, err := semver.ParseConstraint("^1.2.3")
	require.NoError(t, err)

	got, err := semver.Resolve(candidates, []semver.Constraint{c})
	require.NoError(t, err)
	assert.Equal(t, mustParse(t, "1.5.0"), got)
}

func TestResolveIntersectsMultipleConstraints(t *testing.T) {
	candidates := []semver.Version{
		mustParse(t, "1.2.0"),
		mustParse(t, "1.2.5"),
		mustParse(t, "1.3.0"),
	}
	tilde, _ := semver.ParseConstraint("~1.2.0")
	gte, _ := semver.ParseConstraint(">=1.2.4")

	got, err := semver.Resolve(candidates, []semver.Constraint{tilde, gte})
	require.NoError(t, err)
	assert.Equal(t, mustParse(t, "1.2.5"), got)
}

func TestResolveErrorsWhenNoCandidateSatisfies(t *testing.T) {
	candidates := []semver.Version{mustParse(t, "1.0.0"), mustParse(t, "1.1.0")}
	c, _ := semver.ParseConstraint("^2.0.0")
	_, err := semver.Resolve(candidates, []semver.Constraint{c})
	assert.Error(t, err)
}

func TestResolvePrefersReleaseOverPrereleaseAtSameVersion(t *testing.T) {
	candidates := []semver.Version{
		mustParse(t, "1.0.0-rc1"),
		mustParse(t, "1.0.0"),
	}
	c, _ := semver.ParseConstraint(">=1.0.0-rc1")
	got, err := semver.Resolve(candidates, []semver.Constraint{c})
	require.NoError(t, err)
	assert.Equal(t, mustParse(t, "1.0.0"), got)
}
