package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContentStatus string

const (
	StatusDraft   ContentStatus = "draft"
	StatusFuture  ContentStatus = "future"
	StatusPublish ContentStatus = "publish"
)

type Content struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	OwnerID     string        `json:"owner_id" db:"owner_id"`
	Title       string        `json:"title" db:"title"`
	Body        string        `json:"body" db:"body"`
	Status      ContentStatus `json:"status" db:"status"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

type ContentSummary struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Title string    `json:"title" db:"title"`
}

// OwnedContent — черновики и отложенные записи текущего владельца.
type OwnedContent struct {
	Drafts    []ContentSummary `json:"drafts"`
	Scheduled []ContentSummary `json:"scheduled"`
}
