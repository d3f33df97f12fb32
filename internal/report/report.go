// Package report implements the per-kind report generators consumed by
// the cache refresher and the synchronous fallback compute path.
//
// Generators are pure with respect to process state: same location and
// clock in, same report out (weather being the one network-backed
// exception). They are safe to call repeatedly and concurrently.
package report

import (
	"context"

	"github.com/goccy/go-json"
)

// Location is the fully-resolved observing site a generator computes for.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Timezone  string  `json:"timezone"`
}

// Generator produces one JSON-serializable report for a location.
// A failed generation returns an error; it must not mutate any state
// other than its own return value.
type Generator interface {
	Generate(ctx context.Context, loc Location) (json.RawMessage, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, loc Location) (json.RawMessage, error)

func (f GeneratorFunc) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	return f(ctx, loc)
}
