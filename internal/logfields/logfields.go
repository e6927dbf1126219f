package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySource      = "source"
	KeyPriority    = "priority"
	KeyKind        = "kind"
	KeyKey         = "key"
	KeyPolicy      = "policy"
	KeyFragments   = "fragments"
	KeyFingerprint = "fingerprint"
	KeyPlanID      = "plan_id"
	KeyPath        = "path"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Priority(p int) slog.Attr        { return slog.Int(KeyPriority, p) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func Policy(p string) slog.Attr       { return slog.String(KeyPolicy, p) }
func Fragments(n int) slog.Attr       { return slog.Int(KeyFragments, n) }
func Fingerprint(f string) slog.Attr  { return slog.String(KeyFingerprint, f) }
func PlanID(id string) slog.Attr      { return slog.String(KeyPlanID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
