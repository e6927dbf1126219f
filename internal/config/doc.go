// Package config defines the site build configuration surface and turns layered
// sources into a validated resolver.BuildPlan.
//
// Layers, lowest priority first:
//
//	defaults                      priority 0
//	configuration files (-c)      priority 10, 11, ... in flag order
//	.env files                    priority 100
//	BUILDPLAN_* environment       priority 200
//	--set key=value overrides     priority 300
//
// There is no package-level configuration state: Load returns a Result that
// callers pass on explicitly.
package config
