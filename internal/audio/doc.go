// Package audio holds raw single-channel PCM buffers and slices them into
// byte-exact segments addressed by millisecond offsets. It also reads and
// writes the minimal WAV container the transcode step produces.
package audio
