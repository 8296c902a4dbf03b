// Package store persists crawl state in SQLite: seed search queries,
// discovered channels, media items, and the captions accepted for them.
// Listing order is deterministic per entity kind so a restarted crawl
// resumes from its watermarks without loss or duplication.
package store
