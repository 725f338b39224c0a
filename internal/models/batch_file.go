package models

import "time"

// BatchFile is one file staged in the pending upload batch.
type BatchFile struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	AddedAt time.Time `json:"addedAt"`

	// Content is held in memory until the batch is submitted to the
	// analysis service; it is never exposed in JSON responses.
	Content []byte `json:"-"`
}
