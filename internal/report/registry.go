package report

import "github.com/WorldOfGZ/myastroboard/internal/domain"

// Registry maps every report kind to its generator.
// The key set is closed; the refresher iterates it in the order given by
// domain.AllCacheKeys.
func Registry(weather *WeatherClient) map[domain.CacheKey]Generator {
	return map[domain.CacheKey]Generator{
		domain.KeyMoonReport:             NewMoonGenerator(),
		domain.KeySunReport:              NewSunGenerator(),
		domain.KeyDarkWindow:             NewDarkWindowGenerator(),
		domain.KeyMoonPlanner:            NewPlannerGenerator(),
		domain.KeyBestWindowStrict:       NewBestWindowGenerator(ModeStrict),
		domain.KeyBestWindowPractical:    NewBestWindowGenerator(ModePractical),
		domain.KeyBestWindowIllumination: NewBestWindowGenerator(ModeIllumination),
		domain.KeySolarEclipse:           NewEclipseGenerator(EclipseSolar),
		domain.KeyLunarEclipse:           NewEclipseGenerator(EclipseLunar),
		domain.KeyHorizonGraph:           NewHorizonGenerator(),
		domain.KeyWeather:                NewWeatherGenerator(weather),
	}
}
