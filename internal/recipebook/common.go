// Package recipebook holds the concrete, built-in Process definitions:
// C41 color development, standard black-and-white development, stand
// development, and continuous gentle agitation. Each is assembled from the
// recipe package's movement constructors the way the reference firmware
// assembles its static sequence tables.
package recipebook

import "github.com/darkroom/agitator/internal/recipe"

// standardInversion is the shared CW-Pause-CCW-Pause base cycle used by
// every black-and-white recipe.
func standardInversion() []recipe.Movement {
	return recipe.StandardInversion()
}

// continuousGentleSeq is the gentler CW2-Pause1-CCW2-Pause1 base cycle used
// by the color-process minute cycles and the standalone gentle-agitation
// recipe.
func continuousGentleSeq() []recipe.Movement {
	return []recipe.Movement{
		recipe.CW(2),
		recipe.Pause(1),
		recipe.CCW(2),
		recipe.Pause(1),
	}
}

// minuteCycle is C41's 50s-rest / 10s-gentle-agitation minute, expressed as
// a bounded inner loop so the dead-time accounting matches the reference
// firmware's nested loop structure exactly.
func minuteCycle() []recipe.Movement {
	return []recipe.Movement{
		recipe.Pause(50),
		recipe.LoopDuration(10, continuousGentleSeq()),
	}
}
