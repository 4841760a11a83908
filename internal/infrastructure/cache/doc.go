// Package cache provides the byte cache behind the foundation container.
//
// Two backends implement Cache:
//   - Filesystem: zstd-compressed entry files sharded by key hash
//   - Memory: a mutex-guarded map, for tests and short-lived processes
//
// Entries carry an optional TTL; expired entries read as misses and are
// removed lazily or by Prune.
package cache
