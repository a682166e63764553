package recipebook

import "github.com/darkroom/agitator/internal/recipe"

// BWStandard returns the standard black-and-white negative development
// process: four standard inversions followed by a 24-tick rest, then a
// periodic agitation step of two standard inversions.
func BWStandard() *recipe.Process {
	initial := recipe.Step{
		Name:               "Initial Agitation",
		Description:        "First round of agitation to ensure even development",
		TargetTemperatureC: 20.0,
		Body: []recipe.Movement{
			recipe.LoopCount(4, standardInversion()),
			recipe.Pause(24),
		},
	}

	periodic := recipe.Step{
		Name:               "Periodic Agitation",
		Description:        "Continued agitation during development",
		TargetTemperatureC: 20.0,
		Body: []recipe.Movement{
			recipe.LoopCount(2, standardInversion()),
		},
	}

	return &recipe.Process{
		Name:                "Black and White Standard Development",
		FilmType:            "Black and White Negative",
		TankType:            "Developing Tank",
		Chemistry:           "B&W Developer",
		NominalTemperatureC: 20.0,
		Steps:               []recipe.Step{initial, periodic},
	}
}
