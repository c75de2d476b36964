// Package scheduler fires region tasks on a cron cadence.
//
// Cron expressions are interpreted with seconds resolution. Each tick
// triggers every registered task concurrently and never waits for
// completion; the tasks' own re-entrancy guards drop overlapping ticks.
// History and orders run on separate Scheduler instances because their
// cadences differ.
package scheduler
