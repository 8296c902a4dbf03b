// Package align refines caption timestamps against the actual audio using an
// external word-level forced-alignment service. The adjuster submits a padded
// audio window with the cue's transcript and accepts the refined range only
// when enough words, including the first and last, align successfully.
package align
