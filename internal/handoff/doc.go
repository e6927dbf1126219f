// Package handoff serializes a resolved BuildPlan for the external build
// executor and delivers it, either as a JSON/YAML document on a writer or as a
// message on a NATS subject.
package handoff
