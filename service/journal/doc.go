// Package journal records task lifecycle transitions (spawned, completed,
// failed, dropped) and persists them as JSON documents through the abstract
// file system, so the same code writes to local disk, memory or cloud
// storage depending on the configured base URL.
package journal
