package api

import (
	"fmt"
	"time"

	"github.com/WorldOfGZ/myastroboard/internal/settings"
)

func validateAstrodexItem(req AstrodexItemRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(req.Name) > 200 {
		return fmt.Errorf("name must be at most 200 characters")
	}
	if req.ObjectType == "" {
		return fmt.Errorf("object_type is required")
	}
	return nil
}

func validateEquipment(req EquipmentRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	for field, v := range map[string]*float64{
		"focal_length_mm": req.FocalLengthMM,
		"aperture_mm":     req.ApertureMM,
		"pixel_size_um":   req.PixelSizeUM,
		"sensor_width_mm": req.SensorWidthMM,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive", field)
		}
	}
	return nil
}

func validateLocation(loc settings.Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if loc.Timezone != "" {
		if _, err := time.LoadLocation(loc.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}
	return nil
}
