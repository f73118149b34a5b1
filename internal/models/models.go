package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Favourite flag values
const (
	NotFavourite = 0
	IsFavourite  = 1
)

// DateTimeLayouts are the ISO-8601 forms accepted for a release date, tried in order.
// Values without an offset are read as UTC.
var DateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// DateTime is a time.Time that also decodes ISO-8601 datetimes without an offset.
// It encodes as RFC 3339, keeping the offset it was given.
type DateTime struct {
	time.Time
}

// NewDateTime wraps t
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// ParseDateTime parses value with the first matching layout in DateTimeLayouts
func ParseDateTime(value string) (DateTime, error) {
	for _, layout := range DateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DateTime{Time: t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid datetime %q", value)
}

// UnmarshalJSON accepts a JSON string in any of DateTimeLayouts. null leaves d unchanged.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	parsed, err := ParseDateTime(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TVShow represents a stored TV show
type TVShow struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate DateTime `json:"releaseDate"`
	Genre       *string  `json:"genre"`
	ShowType    *string  `json:"showtype"`
	Actors      *string  `json:"actors"`    // One string holding every actor name
	Favourite   int      `json:"favourite"` // 0 or 1
}
