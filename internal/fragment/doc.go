// Package fragment loads configuration fragments from external sources:
// YAML and JSON files, .env files, the process environment and key=value
// overrides from the command line.
//
// Loaders produce resolver.Fragment values and know nothing about which keys
// exist. Callers that do (the config package) pass WithCoerce to turn the raw
// strings of environment variables and overrides into typed values.
package fragment
