// Package captions parses WebVTT subtitle tracks and cleans the resulting
// cue lists through an ordered stage pipeline: overlap resolution, glyph
// blacklisting, text normalization, allow-list matching, word-count and
// duration filtering, and adjacency merging.
package captions
