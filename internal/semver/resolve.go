package semver

import (
	"fmt"
	"sort"
)

// Resolve picks the maximum version in candidates that satisfies every
// constraint in cs. It follows the same generate-candidates,
// keep-the-ones-that-pass, sort-deterministically-and-take-the-best
// shape as a fuzzy matcher's scored-candidate resolution, specialized
// to exact constraint arithmetic: a candidate's "score" is simply
// whether it satisfies every accumulated constraint, and the
// tie-break is version order (descending) rather than edit distance.
func Resolve(candidates []Version, cs []Constraint) (Version, error) {
	var passing []Version
	for _, v := range candidates {
		if satisfiesAll(v, cs) {
			passing = append(passing, v)
		}
	}
	if len(passing) == 0 {
		return Version{}, fmt.Errorf("semver: no candidate version satisfies %v", cs)
	}
	sort.Slice(passing, func(i, j int) bool {
		return Compare(passing[i], passing[j]) > 0
	})
	return passing[0], nil
}

func satisfiesAll(v Version, cs []Constraint) bool {
	for _, c := range cs {
		if !Satisfies(v, c) {
			return false
		}
	}
	return true
}
