package domain

// LocationSignature captures the location parameters whose change
// invalidates every astronomical cache. Pointer fields distinguish
// "never set" from zero coordinates: a nil Latitude means the system
// has never been initialized.
type LocationSignature struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Elevation *float64 `json:"elevation"`
	Timezone  string   `json:"timezone"`
}

// Unset reports whether the signature has never been initialized.
func (s LocationSignature) Unset() bool {
	return s.Latitude == nil
}

// Equal compares all four fields. Two nil pointers are equal; a nil
// pointer never equals a set one.
func (s LocationSignature) Equal(other LocationSignature) bool {
	return floatPtrEqual(s.Latitude, other.Latitude) &&
		floatPtrEqual(s.Longitude, other.Longitude) &&
		floatPtrEqual(s.Elevation, other.Elevation) &&
		s.Timezone == other.Timezone
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Float returns a pointer to v, for building signatures.
func Float(v float64) *float64 {
	return &v
}
