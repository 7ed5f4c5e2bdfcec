// Package database provides the GORM-backed persistence layer.
//
// The top-level package owns the connection and migrations; per-domain
// repositories live in subpackages:
//
//   - users: user accounts
//   - entries: reading-list entries
package database
