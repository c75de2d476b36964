// Package database provides connection pool management for PostgreSQL.
//
// One pool is shared process-wide across all region tasks. Each repository
// call holds a connection only for its own query or transaction, so
// concurrent regions never hold locks across calls.
package database
