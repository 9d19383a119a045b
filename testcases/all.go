package testcases

// All contains all sample movies, grouped by category.
var All = map[string][]Case{
	"shape":    shapeCases,
	"bitmap":   bitmapCases,
	"timeline": timelineCases,
}
