package recipebook

import (
	"fmt"

	"github.com/darkroom/agitator/internal/recipe"
)

// Names are the stable identifiers the HTTP API and CLI use to request a
// built-in recipe by name.
const (
	NameC41              = "c41"
	NameBWStandard       = "bw-standard"
	NameStand            = "stand"
	NameContinuousGentle = "continuous-gentle"
)

// ErrUnknownRecipe is returned by Lookup for a name not in the catalog.
var ErrUnknownRecipe = fmt.Errorf("recipebook: unknown recipe")

// Lookup resolves a catalog name to a factory for that recipe. Each call of
// the factory builds a new Process rather than sharing one, so callers are
// free to mutate metadata without affecting other runs.
func Lookup(name string) (func() *recipe.Process, error) {
	switch name {
	case NameC41:
		return C41, nil
	case NameBWStandard:
		return BWStandard, nil
	case NameStand:
		return Stand, nil
	case NameContinuousGentle:
		return ContinuousGentle, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
}
