package api

import (
	"time"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

// PendingResponse is returned with 202 when a report is not cached yet.
type PendingResponse struct {
	Status string `json:"status"`
}

// CacheStatusResponse reports per-key cache readiness.
type CacheStatusResponse struct {
	Entries  map[string]bool `json:"entries"`
	AllReady bool            `json:"all_ready"`
}

type AstrodexItemRequest struct {
	Name          string `json:"name"`
	ObjectType    string `json:"object_type"`
	Catalogue     string `json:"catalogue,omitempty"`
	RA            string `json:"ra,omitempty"`
	Dec           string `json:"dec,omitempty"`
	Constellation string `json:"constellation,omitempty"`
	Magnitude     string `json:"magnitude,omitempty"`
	Size          string `json:"size,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type AstrodexItemResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ObjectType    string `json:"object_type"`
	Catalogue     string `json:"catalogue,omitempty"`
	RA            string `json:"ra,omitempty"`
	Dec           string `json:"dec,omitempty"`
	Constellation string `json:"constellation,omitempty"`
	Magnitude     string `json:"magnitude,omitempty"`
	Size          string `json:"size,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ListAstrodexResponse struct {
	Items []AstrodexItemResponse `json:"items"`
}

type EquipmentRequest struct {
	Name          string   `json:"name"`
	FocalLengthMM *float64 `json:"focal_length_mm,omitempty"`
	ApertureMM    *float64 `json:"aperture_mm,omitempty"`
	PixelSizeUM   *float64 `json:"pixel_size_um,omitempty"`
	SensorWidthMM *float64 `json:"sensor_width_mm,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type EquipmentResponse struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"`
	Name          string   `json:"name"`
	FocalLengthMM *float64 `json:"focal_length_mm,omitempty"`
	ApertureMM    *float64 `json:"aperture_mm,omitempty"`
	PixelSizeUM   *float64 `json:"pixel_size_um,omitempty"`
	SensorWidthMM *float64 `json:"sensor_width_mm,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type ListEquipmentResponse struct {
	Profiles []EquipmentResponse `json:"profiles"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func astrodexResponse(item domain.AstrodexItem) AstrodexItemResponse {
	return AstrodexItemResponse{
		ID:            item.ID.String(),
		Name:          item.Name,
		ObjectType:    item.ObjectType,
		Catalogue:     item.Catalogue,
		RA:            item.RA,
		Dec:           item.Dec,
		Constellation: item.Constellation,
		Magnitude:     item.Magnitude,
		Size:          item.Size,
		Notes:         item.Notes,
		CreatedAt:     formatTime(item.CreatedAt),
		UpdatedAt:     formatTime(item.UpdatedAt),
	}
}

func equipmentResponse(p domain.EquipmentProfile) EquipmentResponse {
	return EquipmentResponse{
		ID:            p.ID.String(),
		Kind:          string(p.Kind),
		Name:          p.Name,
		FocalLengthMM: p.FocalLengthMM,
		ApertureMM:    p.ApertureMM,
		PixelSizeUM:   p.PixelSizeUM,
		SensorWidthMM: p.SensorWidthMM,
		Notes:         p.Notes,
		CreatedAt:     formatTime(p.CreatedAt),
		UpdatedAt:     formatTime(p.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
