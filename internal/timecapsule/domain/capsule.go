package domain

import "time"

// TimeCapsule is owned by exactly one user (CreatorID). Recipients keep
// insertion order and may repeat or include the creator.
type TimeCapsule struct {
	ID         string
	CreatorID  string
	Title      string
	Content    string
	Image      *string // base64 of the uploaded bytes, nil when nothing was uploaded
	Recipients []string
	CreatedAt  time.Time
}
