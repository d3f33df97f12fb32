package domain

import (
	"time"

	"github.com/google/uuid"
)

// AstrodexItem is one observed or photographed deep-sky object in a
// user's collection.
type AstrodexItem struct {
	ID     uuid.UUID
	UserID uuid.UUID

	Name          string
	ObjectType    string
	Catalogue     string
	RA            string
	Dec           string
	Constellation string
	Magnitude     string
	Size          string
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time
}
