// Command speechcrawl is the operator entry point for the corpus builder.
// It seeds search queries, runs the resumable crawl loop, ingests single
// media files for debugging, and reports crawl progress.
package main
