package recipebook

import "github.com/darkroom/agitator/internal/recipe"

// C41 returns the full C41 color negative development process: an optional
// warm pre-wash, repeated minute cycles of rest and gentle agitation through
// color development and bleach, and a final gentle stabilizer
// rinse. Every WaitUser gate requires operator confirmation before the next
// chemistry stage begins.
func C41() *recipe.Process {
	preWash := recipe.Step{
		Name:               "Pre-Wash",
		Description:        "Optional warm rinse before color development",
		TargetTemperatureC: 38.0,
		Body: []recipe.Movement{
			recipe.CW(5),
			recipe.Pause(1),
			recipe.CCW(5),
			recipe.Pause(1),
			recipe.WaitUser("Pre-wash complete. Ready for developer?"),
		},
	}

	colorDeveloper := recipe.Step{
		Name:               "Color Developer",
		Description:        "Main color development stage with continuous gentle agitation",
		TargetTemperatureC: 38.0,
		Body: []recipe.Movement{
			recipe.LoopDuration(210, minuteCycle()),
			recipe.WaitUser("Development complete. Ready for bleach?"),
		},
	}

	bleach := recipe.Step{
		Name:               "Bleach",
		Description:        "Bleach stage with periodic gentle agitation",
		TargetTemperatureC: 38.0,
		Body: []recipe.Movement{
			recipe.LoopBounded(3, 60*5, minuteCycle()),
			recipe.Pause(15),
			recipe.WaitUser("Bleach complete. Ready for stabilizer?"),
		},
	}

	stabilizer := recipe.Step{
		Name:               "Stabilizer",
		Description:        "Final rinse and stabilization stage",
		TargetTemperatureC: 38.0,
		Body: []recipe.Movement{
			recipe.CW(3),
			recipe.Pause(1),
			recipe.CCW(3),
			recipe.Pause(1),
			recipe.WaitUser("Process complete! Remove film."),
		},
	}

	return &recipe.Process{
		Name:                "C41 Color Film Development",
		FilmType:            "Color Negative",
		TankType:            "Developing Tank",
		Chemistry:           "C41 Color Chemistry",
		NominalTemperatureC: 38.0,
		Steps:               []recipe.Step{preWash, colorDeveloper, bleach, stabilizer},
	}
}
