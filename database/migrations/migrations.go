// Package migrations registers the schema migrations with pkg/migration.
// Import it for side effects wherever a migration.Runner is built.
package migrations
