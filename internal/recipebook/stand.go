package recipebook

import "github.com/darkroom/agitator/internal/recipe"

// Stand returns the stand-development process: three standard inversions
// up front, then a single one-hour pause with no agitation at all.
func Stand() *recipe.Process {
	initial := recipe.Step{
		Name:               "Initial Agitation",
		Description:        "Initial agitation before long stand period",
		TargetTemperatureC: 20.0,
		Body: []recipe.Movement{
			recipe.LoopCount(3, standardInversion()),
		},
	}

	longStand := recipe.Step{
		Name:               "Long Stand",
		Description:        "Extended period with minimal agitation",
		TargetTemperatureC: 20.0,
		Body: []recipe.Movement{
			recipe.Pause(3600),
		},
	}

	return &recipe.Process{
		Name:                "Black and White Stand Development",
		FilmType:            "Black and White Negative",
		TankType:            "Developing Tank",
		Chemistry:           "B&W Developer",
		NominalTemperatureC: 20.0,
		Steps:               []recipe.Step{initial, longStand},
	}
}
