package resolver

import "slices"

// Validate checks that every required key is present with a non-nil value.
// Required keys may be dotted paths into nested mappings. All missing keys are
// reported together, sorted, in a *ValidationError.
func Validate(plan BuildPlan, requiredKeys []string) error {
	var missing []string
	for _, key := range requiredKeys {
		if v, ok := plan.Lookup(key); !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return &ValidationError{Missing: slices.Compact(missing)}
}
