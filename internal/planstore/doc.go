// Package planstore keeps a SQLite history of resolved build plans.
//
// Each resolution is stored under a fresh UUID together with the plan's
// content fingerprint, so callers can tell whether a new resolution changed
// anything compared to the previous one.
package planstore
