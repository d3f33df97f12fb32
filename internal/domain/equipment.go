package domain

import (
	"time"

	"github.com/google/uuid"
)

// EquipmentKind distinguishes the two profile families.
type EquipmentKind string

const (
	EquipmentTelescope EquipmentKind = "telescope"
	EquipmentCamera    EquipmentKind = "camera"
)

// EquipmentProfile describes one telescope or camera owned by a user.
// Optical fields are pointers because users may leave them blank.
type EquipmentProfile struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Kind   EquipmentKind

	Name          string
	FocalLengthMM *float64
	ApertureMM    *float64
	PixelSizeUM   *float64
	SensorWidthMM *float64
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time
}
