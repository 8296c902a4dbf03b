// Package scheduler produces resumable units of work for the crawl loop:
// query result pages, channel item indices, and unprocessed media items.
// Progress is recorded through per-key watermarks so a restarted run resumes
// exactly where the previous one stopped.
package scheduler
