package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a stored entity. Search queries and
// channels only move new -> done; media items may also land in one of the
// terminal error classifications.
type Status string

const (
	StatusNew              Status = "new"
	StatusDone             Status = "done"
	StatusSubtitlesMissing Status = "subtitles_missing"
	StatusSubtitlesInvalid Status = "subtitles_invalid"
	StatusUnknownError     Status = "unknown_error"
)

var mediaStatuses = map[Status]struct{}{
	StatusNew:              {},
	StatusDone:             {},
	StatusSubtitlesMissing: {},
	StatusSubtitlesInvalid: {},
	StatusUnknownError:     {},
}

// ParseStatus converts a string into a known media status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := mediaStatuses[normalized]
	return normalized, ok
}

// IsErrorStatus reports whether a status is a terminal error classification.
func (s Status) IsErrorStatus() bool {
	switch s {
	case StatusSubtitlesMissing, StatusSubtitlesInvalid, StatusUnknownError:
		return true
	default:
		return false
	}
}

// SearchQuery tracks enumeration progress for one seed query. Watermark is
// the last fully processed result page; nil means not started.
type SearchQuery struct {
	Query     string
	Status    Status
	Watermark *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Channel tracks enumeration progress for one discovered channel. Watermark
// is the last fully processed item index; Size is the declared item count
// ceiling.
type Channel struct {
	ChannelID  string
	Status     Status
	Watermark  *int
	Size       int
	NumChecked int
	NumValid   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MediaItem is one downloadable media entry keyed by its natural identifier.
type MediaItem struct {
	MediaID     string
	ChannelID   string
	Status      Status
	MediaFile   string
	LengthMS    *int64
	PublishTime *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Caption is one exported cue owned by a media item.
type Caption struct {
	ID        int64
	MediaID   string
	StartMS   int64
	EndMS     int64
	Text      string
	CreatedAt time.Time
}

// Stats aggregates per-status row counts for operator display.
type Stats struct {
	Queries  map[Status]int
	Channels map[Status]int
	Media    map[Status]int
	Captions int
}
