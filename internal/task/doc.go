// Package task implements the per-(region, data-kind) run guard.
//
// A RegionTask owns at most one in-flight pipeline run. Triggers are
// fire-and-forget: a trigger while a run is active is dropped, which is the
// re-entrancy guard preventing overlapping fetch/write cycles for the same
// region. Run outcomes are logged, never propagated to the trigger source.
package task
