package model

import "time"

type Competition struct {
	CompetitionID int64
	Name          string
	Slug          string
	EntryDeadline *time.Time
}

// EntryClosed reports whether the competition composition window is over at the given instant.
// A competition without a deadline never closes.
func (c Competition) EntryClosed(now time.Time) bool {
	return c.EntryDeadline != nil && now.After(*c.EntryDeadline)
}
