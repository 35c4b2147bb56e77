// Package watch provides fsnotify-driven file system watching with
// debouncing, and a Coordinator that re-runs the Indexer's scan/hash/commit
// cycle for a collection whenever its root changes (spec §4's Supplemented
// features, "watch mode").
//
// The package implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching
//   - Fallback: polling, for environments where fsnotify fails (network mounts, containers)
//
// Events are debounced to coalesce rapid changes from editors and git
// operations before triggering a reindex.
package watch
