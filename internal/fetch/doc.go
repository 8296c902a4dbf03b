// Package fetch builds source-platform URLs for crawl work units and drives
// the external downloader that retrieves media and caption files.
package fetch
