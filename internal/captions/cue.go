package captions

// Cue is one caption entry: a time range in milliseconds and its text.
type Cue struct {
	StartMS int64
	EndMS   int64
	Text    string
}

// DurationMS returns the cue's length in milliseconds.
func (c Cue) DurationMS() int64 {
	return c.EndMS - c.StartMS
}
