// Package pipeline implements the history and order ingestion runs.
//
// A pipeline run is pure orchestration: read what is already known from the
// repository, fetch the delta from ESI under the shared permit pool, and
// persist only rows that are actually new. Runs are invoked by region tasks
// and hold no state between invocations.
package pipeline
