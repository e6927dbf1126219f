package resolver

import "git.home.luguber.info/inful/buildplan/internal/foundation/normalization"

// MergePolicy selects how two fragments defining the same key are combined.
type MergePolicy string

const (
	PolicyOverwrite MergePolicy = "overwrite-by-priority"
	PolicyDeepMerge MergePolicy = "deep-merge-mappings"
	PolicyReject    MergePolicy = "reject-on-conflict"
)

// DefaultPolicy is the generator's historical behaviour.
const DefaultPolicy = PolicyOverwrite

var policyNormalizer = normalization.NewEnumNormalizer("merge policy", map[string]MergePolicy{
	"overwrite":             PolicyOverwrite,
	"overwrite-by-priority": PolicyOverwrite,
	"deep-merge":            PolicyDeepMerge,
	"deep-merge-mappings":   PolicyDeepMerge,
	"reject":                PolicyReject,
	"reject-on-conflict":    PolicyReject,
}, DefaultPolicy)

// ParsePolicy accepts the canonical policy names and their short forms,
// case-insensitively and with either '-' or '_' separators.
func ParsePolicy(raw string) (MergePolicy, error) {
	return policyNormalizer.Parse(raw)
}

// PolicyNames lists every accepted spelling, for help output.
func PolicyNames() []string {
	return policyNormalizer.ValidValues()
}

// Valid reports whether p is one of the known policies.
func (p MergePolicy) Valid() bool {
	switch p {
	case PolicyOverwrite, PolicyDeepMerge, PolicyReject:
		return true
	}
	return false
}

func (p MergePolicy) String() string { return string(p) }
