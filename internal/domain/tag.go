package domain

import "time"

// Tag is a reusable classifier attachable to many tasks.
// UsageCount is denormalized: it must equal the number of active
// (non-archived) tasks currently associated with the tag, and is
// maintained only by the tag usage tracker, never by callers.
type Tag struct {
	ID         int64
	Name       string
	Color      string
	UsageCount int64
	CreatedAt  time.Time
}

// Project groups tasks. Color comes from the shared palette when the
// caller does not supply one.
type Project struct {
	ID        int64
	Name      string
	Color     string
	OwnerID   int64
	CreatedAt time.Time
}
