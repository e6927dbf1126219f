// Package resolver merges layered configuration fragments into one immutable
// BuildPlan.
//
// A Fragment is a named mapping of option keys to values with a priority. Resolve
// applies fragments from the lowest to the highest priority under a MergePolicy:
//
//	overwrite-by-priority  later fragments replace earlier values
//	deep-merge-mappings    nested mappings merge key by key, anything else overwrites
//	reject-on-conflict     two fragments disagreeing on a key is a *ConflictError
//
// Fragments with equal priority are applied in the order they were passed.
// Resolution is pure: inputs are never mutated, the resulting plan shares no
// memory with them, and a failed resolution yields no plan at all.
//
// Every key of a plan records the sources of the fragments whose values survive
// in it (Provenance), and every leaf path can be traced back the same way
// (Explain).
package resolver
