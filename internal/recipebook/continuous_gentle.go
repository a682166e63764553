package recipebook

import "github.com/darkroom/agitator/internal/recipe"

// ContinuousGentle returns the single-step, count-unbounded gentle
// agitation process used standalone for color or E6 chemistries that want
// motion running indefinitely until the operator ends the run. It is not
// one of the spec's three named reference recipes; it supplements them,
// mirroring the reference firmware's continuous_gentle_process.h.
func ContinuousGentle() *recipe.Process {
	step := recipe.Step{
		Name:               "Continuous Gentle Agitation",
		Description:        "Gentle, continuous movement for consistent development",
		TargetTemperatureC: 38.0,
		Body: []recipe.Movement{
			recipe.LoopCount(0, continuousGentleSeq()),
		},
	}

	return &recipe.Process{
		Name:                "Continuous Gentle Agitation",
		FilmType:            "Various",
		TankType:            "Developing Tank",
		Chemistry:           "Various",
		NominalTemperatureC: 38.0,
		Steps:               []recipe.Step{step},
	}
}
